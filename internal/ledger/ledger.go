// Package ledger implements a capped-supply fungible unit ledger with
// account balances, allowance-based delegated transfers, role-gated supply
// management, and time-locked sub-balances held by an internal escrow
// account. All mutating operations validate every precondition before
// touching state and run inside a single store unit of work.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vesta-ledger/vesta/internal/events"
)

var (
	// ErrUnauthorized occurs when the caller lacks the role an operation
	// requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidAmount occurs when an amount is negative, or zero where a
	// positive amount is required.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance occurs when an account's spendable balance
	// cannot cover a requested debit.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance occurs when a delegated transfer exceeds the
	// allowance granted to the spender.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrSupplyCapExceeded occurs when a mint would push total supply past
	// the configured cap.
	ErrSupplyCapExceeded = errors.New("supply cap exceeded")

	// ErrInvalidRecipient occurs when the null account is named where a
	// real account is required.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrAlreadyLocked occurs when an account already has a live lock under
	// the requested reason.
	ErrAlreadyLocked = errors.New("tokens already locked")

	// ErrNoSuchLock occurs when an operation targets a lock that does not
	// exist or has already been claimed.
	ErrNoSuchLock = errors.New("no tokens locked")
)

// EscrowAccount is the ledger-owned account that holds every live locked
// amount. Locked funds leave the owner's spendable balance and sit here until
// they are claimed back through Unlock.
const EscrowAccount = "escrow:timelock"

// Lock is a time-locked sub-balance recorded under an (account, reason) pair.
// Claimed locks keep their amount for audit; only unclaimed locks count as
// locked value.
type Lock struct {
	Amount     int64     `json:"amount"`
	UnlockTime time.Time `json:"unlock_time"`
	Claimed    bool      `json:"claimed"`
}

// SupplySnapshot summarizes supply at a point in time. Circulating excludes
// units parked in escrow.
type SupplySnapshot struct {
	Total       int64 `json:"total"`
	Cap         int64 `json:"cap"`
	Escrowed    int64 `json:"escrowed"`
	Circulating int64 `json:"circulating"`
}

// Ledger coordinates every balance, allowance, and role mutation through a
// Store and re-emits committed audit records to an optional sink.
type Ledger struct {
	store Store
	cap   int64
	sink  events.Sink
}

// New constructs a ledger over the given store with a fixed supply cap.
func New(store Store, supplyCap int64, sink events.Sink) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger: store is required")
	}
	if supplyCap <= 0 {
		return nil, fmt.Errorf("ledger: supply cap must be positive, got %d", supplyCap)
	}
	return &Ledger{store: store, cap: supplyCap, sink: sink}, nil
}

// SupplyCap returns the configured maximum total supply.
func (l *Ledger) SupplyCap() int64 {
	return l.cap
}

// Mint creates amount new units on to's balance. The caller must hold the
// minter role and the resulting supply must stay within the cap.
func (l *Ledger) Mint(ctx context.Context, caller, to string, amount int64) error {
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleMinter); err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, ErrInvalidAmount
		}
		if to == "" {
			return nil, ErrInvalidRecipient
		}
		supply, err := tx.TotalSupply()
		if err != nil {
			return nil, err
		}
		if amount > l.cap-supply {
			return nil, ErrSupplyCapExceeded
		}
		balance, err := tx.Balance(to)
		if err != nil {
			return nil, err
		}
		if err := tx.SetBalance(to, balance+amount); err != nil {
			return nil, err
		}
		if err := tx.SetTotalSupply(supply + amount); err != nil {
			return nil, err
		}
		rec := events.NewRecord(events.KindTransfer, events.Transfer{From: "", To: to, Amount: amount})
		return []events.Record{rec}, nil
	})
}

// Burn destroys amount units from from's spendable balance. The caller must
// hold the burner role. Locked units cannot be burned because they sit in
// escrow, not on the owner's balance.
func (l *Ledger) Burn(ctx context.Context, caller, from string, amount int64) error {
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleBurner); err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, ErrInvalidAmount
		}
		balance, err := tx.Balance(from)
		if err != nil {
			return nil, err
		}
		if balance < amount {
			return nil, ErrInsufficientBalance
		}
		supply, err := tx.TotalSupply()
		if err != nil {
			return nil, err
		}
		if err := tx.SetBalance(from, balance-amount); err != nil {
			return nil, err
		}
		if err := tx.SetTotalSupply(supply - amount); err != nil {
			return nil, err
		}
		rec := events.NewRecord(events.KindTransfer, events.Transfer{From: from, To: "", Amount: amount})
		return []events.Record{rec}, nil
	})
}

// Transfer moves amount from from's balance to to's balance. Authorization of
// the from account is the caller's responsibility; handlers always pass the
// authenticated principal.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount int64) error {
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := transferTx(tx, from, to, amount); err != nil {
			return nil, err
		}
		rec := events.NewRecord(events.KindTransfer, events.Transfer{From: from, To: to, Amount: amount})
		return []events.Record{rec}, nil
	})
}

// Approve sets the absolute allowance spender may move out of owner's
// balance, replacing any previous value.
func (l *Ledger) Approve(ctx context.Context, owner, spender string, amount int64) error {
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		if spender == "" {
			return nil, ErrInvalidRecipient
		}
		if amount < 0 {
			return nil, ErrInvalidAmount
		}
		if err := tx.SetAllowance(owner, spender, amount); err != nil {
			return nil, err
		}
		rec := events.NewRecord(events.KindApproval, events.Approval{Owner: owner, Spender: spender, Amount: amount})
		return []events.Record{rec}, nil
	})
}

// TransferFrom moves amount from from's balance to to's balance on the
// strength of the allowance from granted to spender, and decrements that
// allowance by the amount moved.
func (l *Ledger) TransferFrom(ctx context.Context, spender, from, to string, amount int64) error {
	return l.update(ctx, func(tx Tx) ([]events.Record, error) {
		if to == "" {
			return nil, ErrInvalidRecipient
		}
		if amount < 0 {
			return nil, ErrInvalidAmount
		}
		allowance, err := tx.Allowance(from, spender)
		if err != nil {
			return nil, err
		}
		if allowance < amount {
			return nil, ErrInsufficientAllowance
		}
		if err := transferTx(tx, from, to, amount); err != nil {
			return nil, err
		}
		remaining := allowance - amount
		if err := tx.SetAllowance(from, spender, remaining); err != nil {
			return nil, err
		}
		return []events.Record{
			events.NewRecord(events.KindTransfer, events.Transfer{From: from, To: to, Amount: amount}),
			events.NewRecord(events.KindApproval, events.Approval{Owner: from, Spender: spender, Amount: remaining}),
		}, nil
	})
}

// BalanceOf returns the spendable balance of an account. Locked amounts are
// excluded; see LockManager.TotalBalanceOf for the combined view.
func (l *Ledger) BalanceOf(ctx context.Context, account string) (int64, error) {
	var balance int64
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		balance, err = tx.Balance(account)
		return err
	})
	return balance, err
}

// TotalSupply returns the number of units currently in existence.
func (l *Ledger) TotalSupply(ctx context.Context) (int64, error) {
	var supply int64
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		supply, err = tx.TotalSupply()
		return err
	})
	return supply, err
}

// Allowance returns the amount spender may currently move out of owner's
// balance.
func (l *Ledger) Allowance(ctx context.Context, owner, spender string) (int64, error) {
	var allowance int64
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		allowance, err = tx.Allowance(owner, spender)
		return err
	})
	return allowance, err
}

// Snapshot returns the current supply figures in one consistent read.
func (l *Ledger) Snapshot(ctx context.Context) (SupplySnapshot, error) {
	snap := SupplySnapshot{Cap: l.cap}
	err := l.store.View(ctx, func(tx Tx) error {
		supply, err := tx.TotalSupply()
		if err != nil {
			return err
		}
		escrowed, err := tx.Balance(EscrowAccount)
		if err != nil {
			return err
		}
		snap.Total = supply
		snap.Escrowed = escrowed
		snap.Circulating = supply - escrowed
		return nil
	})
	return snap, err
}

// RecentEvents returns up to limit audit records, newest first.
func (l *Ledger) RecentEvents(ctx context.Context, limit int) ([]events.Record, error) {
	var records []events.Record
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		records, err = tx.Events(limit)
		return err
	})
	return records, err
}

// update runs fn in one unit of work, journals the records it returns, and
// re-emits them to the sink once the unit commits. Nothing is journaled or
// emitted when fn fails.
func (l *Ledger) update(ctx context.Context, fn func(tx Tx) ([]events.Record, error)) error {
	var records []events.Record
	err := l.store.Update(ctx, func(tx Tx) error {
		recs, err := fn(tx)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := tx.AppendEvent(rec); err != nil {
				return err
			}
		}
		records = recs
		return nil
	})
	if err != nil {
		return err
	}
	l.emit(ctx, records)
	return nil
}

func (l *Ledger) emit(ctx context.Context, records []events.Record) {
	if l.sink == nil {
		return
	}
	for _, rec := range records {
		_ = l.sink.Emit(ctx, rec)
	}
}

// transferTx applies a balance movement inside an open unit of work. It
// performs the recipient, amount, and balance checks shared by every path
// that moves funds, including escrow postings.
func transferTx(tx Tx, from, to string, amount int64) error {
	if to == "" {
		return ErrInvalidRecipient
	}
	if amount < 0 {
		return ErrInvalidAmount
	}
	fromBalance, err := tx.Balance(from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}
	if err := tx.SetBalance(from, fromBalance-amount); err != nil {
		return err
	}
	toBalance, err := tx.Balance(to)
	if err != nil {
		return err
	}
	return tx.SetBalance(to, toBalance+amount)
}
