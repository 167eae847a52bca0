package marginfi

import (
	"github.com/gagliardetto/solana-go"
)

var (
	seedLiquidityVault          = []byte("liquidity_vault")
	seedInsuranceVault          = []byte("insurance_vault")
	seedFeeVault                = []byte("fee_vault")
	seedLiquidityVaultAuthority = []byte("liquidity_vault_auth")
	seedInsuranceVaultAuthority = []byte("insurance_vault_auth")
	seedFeeVaultAuthority       = []byte("fee_vault_auth")
)

// BankVaultType selects one of the three token vaults attached to a bank.
type BankVaultType uint8

const (
	BankVaultTypeLiquidity BankVaultType = iota
	BankVaultTypeInsurance
	BankVaultTypeFee
)

func (t BankVaultType) String() string {
	switch t {
	case BankVaultTypeLiquidity:
		return "liquidity"
	case BankVaultTypeInsurance:
		return "insurance"
	case BankVaultTypeFee:
		return "fee"
	}
	return "unknown"
}

func (t BankVaultType) seed() []byte {
	switch t {
	case BankVaultTypeInsurance:
		return seedInsuranceVault
	case BankVaultTypeFee:
		return seedFeeVault
	}
	return seedLiquidityVault
}

func (t BankVaultType) authoritySeed() []byte {
	switch t {
	case BankVaultTypeInsurance:
		return seedInsuranceVaultAuthority
	case BankVaultTypeFee:
		return seedFeeVaultAuthority
	}
	return seedLiquidityVaultAuthority
}

// DeriveBankVaultPDA derives the token vault address of the given type
// for a bank.
func DeriveBankVaultPDA(programID, bankPK solana.PublicKey, vault BankVaultType) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{vault.seed(), bankPK.Bytes()}, programID)
}

// DeriveBankVaultAuthorityPDA derives the authority address of the given
// vault type for a bank.
func DeriveBankVaultAuthorityPDA(programID, bankPK solana.PublicKey, vault BankVaultType) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{vault.authoritySeed(), bankPK.Bytes()}, programID)
}
