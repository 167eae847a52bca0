package marginfi

import (
	"bytes"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Uint128 is the little-endian bit pattern of an unsigned 128-bit
// integer, as stored on chain.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Int128 is the two's-complement bit pattern of a signed 128-bit integer.
type Int128 Uint128

var twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)

func (i Int128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(i.Hi)
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(i.Lo))
	if i.Hi&(1<<63) != 0 {
		v.Sub(v, twoPow128)
	}
	return v
}

// Int128FromBigInt truncates v to 128 bits two's complement.
func Int128FromBigInt(v *big.Int) Int128 {
	m := new(big.Int).Mod(v, twoPow128)
	var i Int128
	i.Lo = m.Uint64()
	i.Hi = new(big.Int).Rsh(m, 64).Uint64()
	return i
}

// WrappedI80F48 is a fixed-point number with 80 integer bits and 48
// fractional bits, stored as its raw i128 bit pattern. The layout is an
// external contract owned by the on-chain program.
type WrappedI80F48 struct {
	Value Int128
}

const i80f48FractionalBits = 48

// Float returns the represented value as an arbitrary-precision float.
func (w WrappedI80F48) Float() *big.Float {
	f := new(big.Float).SetInt(w.Value.BigInt())
	return f.Quo(f, big.NewFloat(1<<i80f48FractionalBits))
}

// Float64 returns the represented value as a float64, losing precision
// beyond the 53-bit mantissa.
func (w WrappedI80F48) Float64() float64 {
	f, _ := w.Float().Float64()
	return f
}

// I80F48FromFloat64 builds the fixed-point bit pattern for f. Intended
// for constructing records locally; fractional bits beyond 2^-48 are
// truncated.
func I80F48FromFloat64(f float64) WrappedI80F48 {
	scaled := new(big.Float).Mul(big.NewFloat(f), big.NewFloat(1<<i80f48FractionalBits))
	v, _ := scaled.Int(nil)
	return WrappedI80F48{Value: Int128FromBigInt(v)}
}

// MarginfiGroup is the top-level configuration record shared by all
// accounts and banks of a deployment.
// On-chain size: 8 (discriminator) + 32 + 512 = 552 bytes.
type MarginfiGroup struct {
	Admin         solana.PublicKey // 32 bytes
	ReservedSpace [32]Uint128      // 512 bytes storage gap
}

// MarginfiAccount is a per-user position record referencing exactly one
// group.
// On-chain size: 8 (discriminator) + 64 + 1024 = 1096 bytes.
type MarginfiAccount struct {
	Authority     solana.PublicKey // 32 bytes
	Group         solana.PublicKey // 32 bytes
	ReservedSpace [64]Uint128      // 1024 bytes storage gap
}

// InterestRateConfig holds the interest curve and fee parameters of a
// bank. Decoded faithfully but treated as opaque here; rate math lives
// in the on-chain program.
// 112 bytes total.
type InterestRateConfig struct {
	OptimalUtilizationRate WrappedI80F48
	PlateauInterestRate    WrappedI80F48
	MaxInterestRate        WrappedI80F48

	InsuranceFeeFixedAPR WrappedI80F48
	InsuranceIRFee       WrappedI80F48
	ProtocolFixedFeeAPR  WrappedI80F48
	ProtocolIRFee        WrappedI80F48
}

// BankConfig holds the risk parameters of a bank.
// 216 bytes total.
type BankConfig struct {
	DepositWeightInit  WrappedI80F48
	DepositWeightMaint WrappedI80F48

	LiabilityWeightInit  WrappedI80F48
	LiabilityWeightMaint WrappedI80F48

	MaxCapacity uint64

	PythOracle         solana.PublicKey
	InterestRateConfig InterestRateConfig
}

// Bank is a per-asset record referenced by a group.
// On-chain size: 8 (discriminator) + 192 + 216 + 40 = 456 bytes.
type Bank struct {
	MintPK solana.PublicKey // 32 bytes
	Group  solana.PublicKey // 32 bytes

	DepositShareValue   WrappedI80F48 // 16 bytes
	LiabilityShareValue WrappedI80F48 // 16 bytes

	LiquidityVault solana.PublicKey // 32 bytes
	InsuranceVault solana.PublicKey // 32 bytes
	FeeVault       solana.PublicKey // 32 bytes

	Config BankConfig // 216 bytes

	TotalBorrowShares  WrappedI80F48 // 16 bytes
	TotalDepositShares WrappedI80F48 // 16 bytes

	LastUpdate int64 // 8 bytes
}

func (g *MarginfiGroup) Serialize() ([]byte, error) {
	return serializeAccount(g, DiscriminatorMarginfiGroup)
}

func DeserializeMarginfiGroup(data []byte) (*MarginfiGroup, error) {
	var g MarginfiGroup
	if err := deserializeAccount(data, DiscriminatorMarginfiGroup, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (a *MarginfiAccount) Serialize() ([]byte, error) {
	return serializeAccount(a, DiscriminatorMarginfiAccount)
}

func DeserializeMarginfiAccount(data []byte) (*MarginfiAccount, error) {
	var a MarginfiAccount
	if err := deserializeAccount(data, DiscriminatorMarginfiAccount, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (b *Bank) Serialize() ([]byte, error) {
	return serializeAccount(b, DiscriminatorBank)
}

func DeserializeBank(data []byte) (*Bank, error) {
	var b Bank
	if err := deserializeAccount(data, DiscriminatorBank, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func serializeAccount(v any, disc [8]byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("serializing account: %w", err)
	}
	return buf.Bytes(), nil
}

// deserializeAccount validates the discriminator and decodes the account
// body into out. Extra trailing bytes are tolerated for forward
// compatibility.
func deserializeAccount(data []byte, disc [8]byte, out any) error {
	if err := validateDiscriminator(data, disc); err != nil {
		return err
	}
	if err := bin.NewBorshDecoder(data[discriminatorSize:]).Decode(out); err != nil {
		return fmt.Errorf("deserializing account: %w", err)
	}
	return nil
}
