package marginfi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// Client provides read-only access to the marginfi program accounts of a
// single group deployment. It performs no retries and keeps no cache;
// callers decide whether a failed fetch is worth retrying.
type Client struct {
	log *slog.Logger
	rpc RPCClient
	cfg Config
}

// New creates a new marginfi client bound to the deployment described by
// cfg.
func New(log *slog.Logger, rpc RPCClient, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Client{
		log: log,
		rpc: rpc,
		cfg: cfg,
	}, nil
}

// GroupPK returns the configured group address.
func (c *Client) GroupPK() solana.PublicKey {
	return c.cfg.GroupPK
}

// BankPKs returns the configured bank address list.
func (c *Client) BankPKs() []solana.PublicKey {
	return c.cfg.BankPKs
}

// fetchAccountData fetches the raw bytes of a single account, returning
// ErrAccountNotFound when the address does not exist on the ledger.
func (c *Client) fetchAccountData(ctx context.Context, addr solana.PublicKey, commitment solanarpc.CommitmentType) ([]byte, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, addr, &solanarpc.GetAccountInfoOpts{
		Commitment: c.cfg.commitmentOrDefault(commitment),
	})
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("fetching account %s: %w", addr, err)
	}
	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}
	return result.Value.Data.GetBinary(), nil
}

// fetchMultipleAccountsData fetches the raw bytes of many accounts in a
// single round trip. The result is index-aligned with addrs; a nil entry
// marks an address absent from the ledger.
func (c *Client) fetchMultipleAccountsData(ctx context.Context, addrs []solana.PublicKey, commitment solanarpc.CommitmentType) ([][]byte, error) {
	result, err := c.rpc.GetMultipleAccountsWithOpts(ctx, addrs, &solanarpc.GetMultipleAccountsOpts{
		Commitment: c.cfg.commitmentOrDefault(commitment),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %d accounts: %w", len(addrs), err)
	}
	if result == nil || len(result.Value) != len(addrs) {
		got := 0
		if result != nil {
			got = len(result.Value)
		}
		return nil, fmt.Errorf("expected %d account results, got %d", len(addrs), got)
	}
	data := make([][]byte, len(addrs))
	for i, acct := range result.Value {
		if acct == nil {
			continue
		}
		data[i] = acct.Data.GetBinary()
	}
	return data, nil
}
