package marginfi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// Group is the in-memory mirror of a marginfi group account together
// with its bank registry. A group is either discarded or refreshed
// wholesale; a refresh swaps the decoded record under the mirror lock so
// readers never observe a partial update.
type Group struct {
	client *Client
	pubkey solana.PublicKey

	mu     sync.RWMutex
	record MarginfiGroup
	banks  BankRegistry
}

// FetchGroup fetches the configured group account and its full bank set
// and assembles a group mirror. The group address is taken from the
// configuration; the on-chain record carries no self-reference to check
// it against.
func (c *Client) FetchGroup(ctx context.Context, commitment solanarpc.CommitmentType) (*Group, error) {
	data, err := c.fetchAccountData(ctx, c.cfg.GroupPK, commitment)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrGroupAccountNotFound
		}
		return nil, fmt.Errorf("fetching group %s: %w", c.cfg.GroupPK, err)
	}

	banks, err := c.FetchBanks(ctx, commitment)
	if err != nil {
		return nil, err
	}

	return NewGroupFromRawBytes(c, data, banks)
}

// NewGroupFromDecoded assembles a group mirror from an already-decoded
// record and bank registry. No I/O, no validation.
func NewGroupFromDecoded(c *Client, record *MarginfiGroup, banks BankRegistry) *Group {
	if banks == nil {
		banks = BankRegistry{}
	}
	return &Group{
		client: c,
		pubkey: c.cfg.GroupPK,
		record: *record,
		banks:  banks,
	}
}

// NewGroupFromRawBytes decodes raw group account bytes and assembles a
// group mirror around them.
func NewGroupFromRawBytes(c *Client, data []byte, banks BankRegistry) (*Group, error) {
	record, err := DeserializeMarginfiGroup(data)
	if err != nil {
		return nil, fmt.Errorf("deserializing group %s: %w", c.cfg.GroupPK, err)
	}
	return NewGroupFromDecoded(c, record, banks), nil
}

// Pubkey returns the group address.
func (g *Group) Pubkey() solana.PublicKey {
	return g.pubkey
}

// Admin returns the group administrator.
func (g *Group) Admin() solana.PublicKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.record.Admin
}

// Record returns a copy of the decoded group record.
func (g *Group) Record() MarginfiGroup {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.record
}

// Banks returns the bank registry. The registry is replaced wholesale on
// rebuild, never mutated, so the returned map is a stable snapshot.
func (g *Group) Banks() BankRegistry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.banks
}

// Bank looks up a bank of this group by address.
func (g *Group) Bank(addr solana.PublicKey) (*Bank, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.banks[addr.String()]
	return b, ok
}

// Refresh re-fetches the group's own account bytes and swaps the decoded
// record in place. The bank registry is not re-fetched here; Account.Refresh
// rebuilds it together with the group in one coordinated operation.
func (g *Group) Refresh(ctx context.Context, commitment solanarpc.CommitmentType) error {
	data, err := g.client.fetchAccountData(ctx, g.pubkey, commitment)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrGroupAccountNotFound
		}
		return fmt.Errorf("fetching group %s: %w", g.pubkey, err)
	}

	record, err := DeserializeMarginfiGroup(data)
	if err != nil {
		return fmt.Errorf("deserializing group %s: %w", g.pubkey, err)
	}

	g.mu.Lock()
	g.record = *record
	g.mu.Unlock()

	g.client.log.Debug("refreshed group", "group", g.pubkey)
	return nil
}
