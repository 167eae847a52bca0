package marginfi

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// BankRegistry maps a bank address (base58 string form) to its decoded
// record. A registry is only ever built whole: either every configured
// bank resolved, or the build failed.
type BankRegistry map[string]*Bank

// Bank looks up a bank by address.
func (r BankRegistry) Bank(addr solana.PublicKey) (*Bank, bool) {
	b, ok := r[addr.String()]
	return b, ok
}

// FetchBanks fetches and decodes the full configured bank set in one
// batched call. If any bank address is unresolvable the whole operation
// fails with a MissingAccountsError naming every absent address.
// Duplicate configured addresses are passed through; the last entry wins.
func (c *Client) FetchBanks(ctx context.Context, commitment solanarpc.CommitmentType) (BankRegistry, error) {
	addrs := c.cfg.BankPKs
	if len(addrs) == 0 {
		return BankRegistry{}, nil
	}

	blobs, err := c.fetchMultipleAccountsData(ctx, addrs, commitment)
	if err != nil {
		return nil, fmt.Errorf("fetching banks: %w", err)
	}

	var missing []solana.PublicKey
	for i, blob := range blobs {
		if blob == nil {
			missing = append(missing, addrs[i])
		}
	}
	if len(missing) > 0 {
		return nil, &MissingAccountsError{Addresses: missing}
	}

	registry := make(BankRegistry, len(addrs))
	for i, blob := range blobs {
		bank, err := DeserializeBank(blob)
		if err != nil {
			return nil, fmt.Errorf("deserializing bank %s: %w", addrs[i], err)
		}
		registry[addrs[i].String()] = bank
	}

	c.log.Debug("fetched banks", "count", len(registry))
	return registry, nil
}
