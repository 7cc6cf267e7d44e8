package ledger

import (
	"context"

	"github.com/vesta-ledger/vesta/internal/events"
)

// Store provides atomic units of work over ledger state. Implementations must
// guarantee that concurrent Update calls are serialized and that a unit either
// applies all of its writes or none of them.
type Store interface {
	// Update runs fn inside an exclusive unit of work. If fn returns an
	// error the unit is rolled back and the error is returned unchanged.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn against a consistent read-only snapshot. Writes made
	// through the transaction fail.
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes ledger state to a single unit of work. Reads observe writes made
// earlier in the same unit.
type Tx interface {
	// Balance returns the spendable balance of an account. Unknown
	// accounts hold zero.
	Balance(account string) (int64, error)
	SetBalance(account string, amount int64) error

	// TotalSupply returns the number of units currently in existence.
	TotalSupply() (int64, error)
	SetTotalSupply(amount int64) error

	// Allowance returns the amount spender may move out of owner's
	// balance. Unset pairs hold zero.
	Allowance(owner, spender string) (int64, error)
	SetAllowance(owner, spender string, amount int64) error

	// GetLock returns the lock recorded under (account, reason) and
	// whether one exists.
	GetLock(account, reason string) (Lock, bool, error)
	// PutLock stores the lock recorded under (account, reason). The reason
	// must already be indexed via AddLockReason.
	PutLock(account, reason string, lock Lock) error
	// LockReasons returns every reason ever indexed for the account, in
	// first-used order.
	LockReasons(account string) ([]string, error)
	// AddLockReason appends the reason to the account's index. Indexing an
	// already indexed reason is a no-op.
	AddLockReason(account, reason string) error

	// HasRole reports whether the principal currently holds the role.
	HasRole(principal string, role Role) (bool, error)
	SetRole(principal string, role Role, granted bool) error

	// AppendEvent adds a record to the audit journal.
	AppendEvent(record events.Record) error
	// Events returns up to limit journal records, newest first.
	Events(limit int) ([]events.Record, error)
}
