package ledger

import (
	"context"
	"time"

	"github.com/vesta-ledger/vesta/internal/events"
)

// AccountLock pairs a reason with the lock recorded under it.
type AccountLock struct {
	Reason string `json:"reason"`
	Lock
}

// LockManager layers the time-lock state machine over the ledger. Locking
// moves funds from the owner's spendable balance into the escrow account and
// records a lock under (account, reason); unlocking claims every matured lock
// and returns the escrowed total in a single transfer.
//
// Every mutating operation requires the caller to hold the admin role. Reads
// are open.
type LockManager struct {
	ledger *Ledger
	now    func() time.Time
}

// NewLockManager constructs a lock manager over the ledger.
func NewLockManager(l *Ledger) *LockManager {
	return &LockManager{ledger: l, now: time.Now}
}

// Lock escrows amount from the caller's balance under reason, unlockable
// once duration has elapsed. A reason can hold at most one live lock; a
// claimed lock frees the reason for reuse.
func (m *LockManager) Lock(ctx context.Context, caller, reason string, amount int64, duration time.Duration) (Lock, error) {
	var out Lock
	err := m.ledger.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleAdmin); err != nil {
			return nil, err
		}
		lock, recs, err := lockTx(tx, caller, caller, reason, amount, duration, m.now())
		if err != nil {
			return nil, err
		}
		out = lock
		return recs, nil
	})
	return out, err
}

// TransferWithLock escrows amount from the caller's balance but records the
// lock against to, combining a transfer and a lock in one operation.
func (m *LockManager) TransferWithLock(ctx context.Context, caller, to, reason string, amount int64, duration time.Duration) (Lock, error) {
	var out Lock
	err := m.ledger.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleAdmin); err != nil {
			return nil, err
		}
		lock, recs, err := lockTx(tx, caller, to, reason, amount, duration, m.now())
		if err != nil {
			return nil, err
		}
		out = lock
		return recs, nil
	})
	return out, err
}

// ExtendLock pushes the unlock time of the caller's live lock under reason
// further out by duration. The amount is untouched.
func (m *LockManager) ExtendLock(ctx context.Context, caller, reason string, duration time.Duration) (Lock, error) {
	var out Lock
	err := m.ledger.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleAdmin); err != nil {
			return nil, err
		}
		if duration < 0 {
			return nil, ErrInvalidAmount
		}
		live, err := tokensLockedTx(tx, caller, reason)
		if err != nil {
			return nil, err
		}
		if live == 0 {
			return nil, ErrNoSuchLock
		}
		lock, _, err := tx.GetLock(caller, reason)
		if err != nil {
			return nil, err
		}
		lock.UnlockTime = lock.UnlockTime.Add(duration)
		if err := tx.PutLock(caller, reason, lock); err != nil {
			return nil, err
		}
		out = lock
		rec := events.NewRecord(events.KindLocked, events.Locked{
			Account:    caller,
			Reason:     reason,
			Amount:     lock.Amount,
			UnlockTime: lock.UnlockTime,
		})
		return []events.Record{rec}, nil
	})
	return out, err
}

// IncreaseLockAmount escrows amount more from the caller's balance and adds
// it to the live lock under reason. The unlock time is untouched.
func (m *LockManager) IncreaseLockAmount(ctx context.Context, caller, reason string, amount int64) (Lock, error) {
	var out Lock
	err := m.ledger.update(ctx, func(tx Tx) ([]events.Record, error) {
		if err := requireRole(tx, caller, RoleAdmin); err != nil {
			return nil, err
		}
		if amount < 0 {
			return nil, ErrInvalidAmount
		}
		live, err := tokensLockedTx(tx, caller, reason)
		if err != nil {
			return nil, err
		}
		if live == 0 {
			return nil, ErrNoSuchLock
		}
		if err := transferTx(tx, caller, EscrowAccount, amount); err != nil {
			return nil, err
		}
		lock, _, err := tx.GetLock(caller, reason)
		if err != nil {
			return nil, err
		}
		lock.Amount += amount
		if err := tx.PutLock(caller, reason, lock); err != nil {
			return nil, err
		}
		out = lock
		return []events.Record{
			events.NewRecord(events.KindTransfer, events.Transfer{From: caller, To: EscrowAccount, Amount: amount}),
			events.NewRecord(events.KindLocked, events.Locked{
				Account:    caller,
				Reason:     reason,
				Amount:     lock.Amount,
				UnlockTime: lock.UnlockTime,
			}),
		}, nil
	})
	return out, err
}

// Unlock claims every matured, unclaimed lock of account and returns the
// escrowed total to its spendable balance in one transfer. It returns the
// total claimed; a second call before any new maturity returns zero and
// moves nothing.
func (m *LockManager) Unlock(ctx context.Context, caller, account string) (int64, error) {
	var total int64
	err := m.ledger.update(ctx, func(tx Tx) ([]events.Record, error) {
		total = 0
		if err := requireRole(tx, caller, RoleAdmin); err != nil {
			return nil, err
		}
		reasons, err := tx.LockReasons(account)
		if err != nil {
			return nil, err
		}
		now := m.now()
		var recs []events.Record
		for _, reason := range reasons {
			lock, ok, err := tx.GetLock(account, reason)
			if err != nil {
				return nil, err
			}
			if !ok || lock.Claimed || lock.Amount <= 0 || lock.UnlockTime.After(now) {
				continue
			}
			lock.Claimed = true
			if err := tx.PutLock(account, reason, lock); err != nil {
				return nil, err
			}
			recs = append(recs, events.NewRecord(events.KindUnlocked, events.Unlocked{
				Account: account,
				Reason:  reason,
				Amount:  lock.Amount,
			}))
			total += lock.Amount
		}
		if total == 0 {
			return nil, nil
		}
		if err := transferTx(tx, EscrowAccount, account, total); err != nil {
			return nil, err
		}
		recs = append(recs, events.NewRecord(events.KindTransfer, events.Transfer{
			From:   EscrowAccount,
			To:     account,
			Amount: total,
		}))
		return recs, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// TokensLocked returns the unclaimed amount locked under (account, reason),
// or zero when no live lock exists.
func (m *LockManager) TokensLocked(ctx context.Context, account, reason string) (int64, error) {
	var amount int64
	err := m.ledger.store.View(ctx, func(tx Tx) error {
		var err error
		amount, err = tokensLockedTx(tx, account, reason)
		return err
	})
	return amount, err
}

// TokensLockedAtTime returns the amount that was still locked under
// (account, reason) as of the given instant. This is a point-in-time query:
// it deliberately ignores the claimed flag, so a lock claimed after at still
// reports its amount.
func (m *LockManager) TokensLockedAtTime(ctx context.Context, account, reason string, at time.Time) (int64, error) {
	var amount int64
	err := m.ledger.store.View(ctx, func(tx Tx) error {
		lock, ok, err := tx.GetLock(account, reason)
		if err != nil || !ok {
			return err
		}
		if lock.UnlockTime.After(at) {
			amount = lock.Amount
		}
		return nil
	})
	return amount, err
}

// TokensUnlockable returns the amount under (account, reason) that has
// matured and not yet been claimed.
func (m *LockManager) TokensUnlockable(ctx context.Context, account, reason string) (int64, error) {
	var amount int64
	now := m.now()
	err := m.ledger.store.View(ctx, func(tx Tx) error {
		var err error
		amount, err = unlockableTx(tx, account, reason, now)
		return err
	})
	return amount, err
}

// UnlockableTokens returns the total a call to Unlock would claim for the
// account right now, without mutating anything.
func (m *LockManager) UnlockableTokens(ctx context.Context, account string) (int64, error) {
	var total int64
	now := m.now()
	err := m.ledger.store.View(ctx, func(tx Tx) error {
		reasons, err := tx.LockReasons(account)
		if err != nil {
			return err
		}
		for _, reason := range reasons {
			amount, err := unlockableTx(tx, account, reason, now)
			if err != nil {
				return err
			}
			total += amount
		}
		return nil
	})
	return total, err
}

// TotalBalanceOf returns the account's spendable balance plus every live
// locked amount, read in one consistent snapshot.
func (m *LockManager) TotalBalanceOf(ctx context.Context, account string) (int64, error) {
	var total int64
	err := m.ledger.store.View(ctx, func(tx Tx) error {
		balance, err := tx.Balance(account)
		if err != nil {
			return err
		}
		total = balance
		reasons, err := tx.LockReasons(account)
		if err != nil {
			return err
		}
		for _, reason := range reasons {
			amount, err := tokensLockedTx(tx, account, reason)
			if err != nil {
				return err
			}
			total += amount
		}
		return nil
	})
	return total, err
}

// Locked returns the raw lock record under (account, reason) and whether one
// exists, claimed or not.
func (m *LockManager) Locked(ctx context.Context, account, reason string) (Lock, bool, error) {
	var (
		lock  Lock
		found bool
	)
	err := m.ledger.store.View(ctx, func(tx Tx) error {
		var err error
		lock, found, err = tx.GetLock(account, reason)
		return err
	})
	return lock, found, err
}

// Locks returns every lock ever recorded for the account in first-used
// reason order, including claimed ones.
func (m *LockManager) Locks(ctx context.Context, account string) ([]AccountLock, error) {
	var out []AccountLock
	err := m.ledger.store.View(ctx, func(tx Tx) error {
		reasons, err := tx.LockReasons(account)
		if err != nil {
			return err
		}
		for _, reason := range reasons {
			lock, ok, err := tx.GetLock(account, reason)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			out = append(out, AccountLock{Reason: reason, Lock: lock})
		}
		return nil
	})
	return out, err
}

// lockTx creates a fresh lock for account funded from payer's balance. Used
// by both Lock and TransferWithLock; the two differ only in whether payer and
// account coincide.
func lockTx(tx Tx, payer, account, reason string, amount int64, duration time.Duration, now time.Time) (Lock, []events.Record, error) {
	if account == "" {
		return Lock{}, nil, ErrInvalidRecipient
	}
	live, err := tokensLockedTx(tx, account, reason)
	if err != nil {
		return Lock{}, nil, err
	}
	if live > 0 {
		return Lock{}, nil, ErrAlreadyLocked
	}
	if amount <= 0 || duration < 0 {
		return Lock{}, nil, ErrInvalidAmount
	}
	if err := transferTx(tx, payer, EscrowAccount, amount); err != nil {
		return Lock{}, nil, err
	}
	if err := tx.AddLockReason(account, reason); err != nil {
		return Lock{}, nil, err
	}
	lock := Lock{Amount: amount, UnlockTime: now.Add(duration).UTC()}
	if err := tx.PutLock(account, reason, lock); err != nil {
		return Lock{}, nil, err
	}
	recs := []events.Record{
		events.NewRecord(events.KindTransfer, events.Transfer{From: payer, To: EscrowAccount, Amount: amount}),
		events.NewRecord(events.KindLocked, events.Locked{
			Account:    account,
			Reason:     reason,
			Amount:     amount,
			UnlockTime: lock.UnlockTime,
		}),
	}
	return lock, recs, nil
}

// tokensLockedTx returns the live (unclaimed) locked amount inside an open
// unit of work.
func tokensLockedTx(tx Tx, account, reason string) (int64, error) {
	lock, ok, err := tx.GetLock(account, reason)
	if err != nil || !ok {
		return 0, err
	}
	if lock.Claimed {
		return 0, nil
	}
	return lock.Amount, nil
}

// unlockableTx returns the matured, unclaimed amount inside an open unit of
// work.
func unlockableTx(tx Tx, account, reason string, now time.Time) (int64, error) {
	lock, ok, err := tx.GetLock(account, reason)
	if err != nil || !ok {
		return 0, err
	}
	if lock.Claimed || lock.UnlockTime.After(now) {
		return 0, nil
	}
	return lock.Amount, nil
}
