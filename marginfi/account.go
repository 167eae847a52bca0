package marginfi

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/sync/errgroup"
)

// Account is the in-memory mirror of a marginfi account together with
// the group mirror it belongs to. The authority and group fields are
// only ever replaced together, under the mirror lock, so concurrent
// readers never observe a torn update. The lock is held across the swap
// only, never across network calls.
type Account struct {
	client *Client
	pubkey solana.PublicKey

	mu        sync.RWMutex
	authority solana.PublicKey
	group     *Group
}

// FetchAccount fetches a marginfi account and a fresh group mirror and
// assembles an account mirror from both. The two fetches run
// concurrently; their ordering does not matter. Fails with
// ErrGroupMismatch if the decoded account references a group other than
// the configured one.
func (c *Client) FetchAccount(ctx context.Context, accountPK solana.PublicKey, commitment solanarpc.CommitmentType) (*Account, error) {
	var (
		record *MarginfiAccount
		group  *Group
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		data, err := c.fetchAccountData(egCtx, accountPK, commitment)
		if err != nil {
			return err
		}
		record, err = DeserializeMarginfiAccount(data)
		if err != nil {
			return fmt.Errorf("deserializing account %s: %w", accountPK, err)
		}
		return c.checkGroupReference(accountPK, record)
	})
	eg.Go(func() error {
		var err error
		group, err = c.FetchGroup(egCtx, commitment)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	c.log.Debug("fetched account", "account", accountPK, "authority", record.Authority)
	return NewAccountFromDecoded(c, accountPK, record, group)
}

// NewAccountFromDecoded assembles an account mirror from an
// already-decoded record and group mirror. Fails with ErrGroupMismatch
// if the record references a group other than the configured one; no
// partial mirror is constructed.
func NewAccountFromDecoded(c *Client, accountPK solana.PublicKey, record *MarginfiAccount, group *Group) (*Account, error) {
	if err := c.checkGroupReference(accountPK, record); err != nil {
		return nil, err
	}
	return &Account{
		client:    c,
		pubkey:    accountPK,
		authority: record.Authority,
		group:     group,
	}, nil
}

// NewAccountFromRawBytes decodes raw account bytes and assembles an
// account mirror around them.
func NewAccountFromRawBytes(c *Client, accountPK solana.PublicKey, data []byte, group *Group) (*Account, error) {
	record, err := DeserializeMarginfiAccount(data)
	if err != nil {
		return nil, fmt.Errorf("deserializing account %s: %w", accountPK, err)
	}
	return NewAccountFromDecoded(c, accountPK, record, group)
}

func (c *Client) checkGroupReference(accountPK solana.PublicKey, record *MarginfiAccount) error {
	if !record.Group.Equals(c.cfg.GroupPK) {
		return fmt.Errorf("%w: account %s references group %s, configured group is %s",
			ErrGroupMismatch, accountPK, record.Group, c.cfg.GroupPK)
	}
	return nil
}

// Pubkey returns the account address.
func (a *Account) Pubkey() solana.PublicKey {
	return a.pubkey
}

// Authority returns the account's owner authority. It only changes
// through construction and Refresh.
func (a *Account) Authority() solana.PublicKey {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authority
}

// Group returns the account's group mirror.
func (a *Account) Group() *Group {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.group
}

// Snapshot returns the authority and group as a consistent pair, read
// under a single lock acquisition.
func (a *Account) Snapshot() (solana.PublicKey, *Group) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authority, a.group
}

// Refresh re-fetches the account and its group in one batched call,
// rebuilds the full bank registry in a second call, and replaces the
// authority and group mirror together as a single atomic swap.
//
// The account's group reference is validated again on every refresh: the
// ledger is mutable, and a reference that drifted from the configured
// group is a data-integrity violation, not a transient condition.
func (a *Account) Refresh(ctx context.Context, commitment solanarpc.CommitmentType) error {
	c := a.client

	blobs, err := c.fetchMultipleAccountsData(ctx, []solana.PublicKey{c.cfg.GroupPK, a.pubkey}, commitment)
	if err != nil {
		return fmt.Errorf("fetching group and account: %w", err)
	}
	groupData, accountData := blobs[0], blobs[1]
	if accountData == nil {
		return ErrAccountNotFound
	}
	if groupData == nil {
		return ErrGroupAccountNotFound
	}

	record, err := DeserializeMarginfiAccount(accountData)
	if err != nil {
		return fmt.Errorf("deserializing account %s: %w", a.pubkey, err)
	}
	if err := c.checkGroupReference(a.pubkey, record); err != nil {
		return err
	}

	banks, err := c.FetchBanks(ctx, commitment)
	if err != nil {
		return err
	}

	group, err := NewGroupFromRawBytes(c, groupData, banks)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.authority = record.Authority
	a.group = group
	a.mu.Unlock()

	c.log.Debug("refreshed account", "account", a.pubkey, "banks", len(banks))
	return nil
}
