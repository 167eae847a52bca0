package marginfi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrAccountNotFound is returned when a requested account does not
	// exist on the ledger at fetch time.
	ErrAccountNotFound = errors.New("account not found")

	// ErrGroupAccountNotFound is returned when the configured marginfi
	// group account is absent during a coordinated refresh.
	ErrGroupAccountNotFound = errors.New("group account not found")

	// ErrGroupMismatch is returned when a decoded account references a
	// group other than the configured one. This indicates misconfiguration
	// or a wrong address, never a transient condition.
	ErrGroupMismatch = errors.New("account group does not match configured group")
)

// MissingAccountsError reports the bank addresses that could not be
// resolved during a batch fetch. The whole fetch fails; no partial
// registry is ever returned.
type MissingAccountsError struct {
	Addresses []solana.PublicKey
}

func (e *MissingAccountsError) Error() string {
	addrs := make([]string, len(e.Addresses))
	for i, pk := range e.Addresses {
		addrs[i] = pk.String()
	}
	return fmt.Sprintf("missing accounts: %s", strings.Join(addrs, ", "))
}
