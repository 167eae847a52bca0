package marginfi

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaRPCURLs are the Solana RPC URLs per environment.
var SolanaRPCURLs = map[string]string{
	"mainnet-beta": "https://api.mainnet-beta.solana.com",
	"testnet":      "https://api.testnet.solana.com",
	"devnet":       "https://api.devnet.solana.com",
	"localnet":     "http://localhost:8899",
}

// DefaultCommitment is used whenever a Config does not specify one.
const DefaultCommitment = rpc.CommitmentConfirmed

// Config describes the marginfi deployment a client session is bound to.
// It is loaded once and treated as immutable for the lifetime of the
// client.
type Config struct {
	// GroupPK is the address of the marginfi group every fetched account
	// is validated against.
	GroupPK solana.PublicKey

	// BankPKs is the ordered list of bank addresses belonging to the
	// group. The full set is always fetched together.
	BankPKs []solana.PublicKey

	// Commitment is the default read commitment for all fetches. Empty
	// means DefaultCommitment.
	Commitment rpc.CommitmentType
}

func (c *Config) Validate() error {
	if c.GroupPK.IsZero() {
		return errors.New("group public key is required")
	}
	return nil
}

// commitmentOrDefault resolves the per-call commitment: explicit argument
// first, then the config value, then the process default.
func (c *Config) commitmentOrDefault(commitment rpc.CommitmentType) rpc.CommitmentType {
	if commitment != "" {
		return commitment
	}
	if c.Commitment != "" {
		return c.Commitment
	}
	return DefaultCommitment
}
