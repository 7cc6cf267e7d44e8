package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vesta-ledger/vesta/internal/events"
)

var lockEpoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestLockEscrowsBalance(t *testing.T) {
	led, store, sink := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	SetClock(mgr, func() time.Time { return lockEpoch })
	ctx := context.Background()

	lock, err := mgr.Lock(ctx, "acct:admin", "vesting", 4_000, time.Hour)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if lock.Amount != 4_000 || lock.Claimed {
		t.Fatalf("unexpected lock: %+v", lock)
	}
	if !lock.UnlockTime.Equal(lockEpoch.Add(time.Hour)) {
		t.Fatalf("expected unlock at %v, got %v", lockEpoch.Add(time.Hour), lock.UnlockTime)
	}

	balance, _ := led.BalanceOf(ctx, "acct:admin")
	escrow, _ := led.BalanceOf(ctx, EscrowAccount)
	if balance != 6_000 || escrow != 4_000 {
		t.Fatalf("expected balances 6000/4000, got %d/%d", balance, escrow)
	}
	locked, _ := mgr.TokensLocked(ctx, "acct:admin", "vesting")
	if locked != 4_000 {
		t.Fatalf("expected locked 4000, got %d", locked)
	}

	records := sink.Records()
	if len(records) != 2 || records[0].Kind != events.KindTransfer || records[1].Kind != events.KindLocked {
		t.Fatalf("expected transfer then locked records, got %+v", records)
	}
	transfer := records[0].Data.(events.Transfer)
	if transfer.From != "acct:admin" || transfer.To != EscrowAccount || transfer.Amount != 4_000 {
		t.Fatalf("unexpected escrow transfer: %+v", transfer)
	}
	lockedPayload := records[1].Data.(events.Locked)
	if lockedPayload.Account != "acct:admin" || lockedPayload.Reason != "vesting" || lockedPayload.Amount != 4_000 {
		t.Fatalf("unexpected locked payload: %+v", lockedPayload)
	}
}

func TestLockSecondLiveLockRejected(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 1_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 500, time.Hour); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected already locked, got %v", err)
	}
	if locked, _ := mgr.TokensLocked(ctx, "acct:admin", "vesting"); locked != 1_000 {
		t.Fatalf("expected original lock intact, got %d", locked)
	}
}

func TestLockRejectsBadInput(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 0, time.Hour); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero, got %v", err)
	}
	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", -5, time.Hour); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative, got %v", err)
	}
	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 100, -time.Hour); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative duration, got %v", err)
	}
}

func TestLockInsufficientBalanceLeavesNoTrace(t *testing.T) {
	led, store, sink := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 100)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 1_000, time.Hour); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if balance, _ := led.BalanceOf(ctx, "acct:admin"); balance != 100 {
		t.Fatalf("expected balance unchanged, got %d", balance)
	}
	locks, _ := mgr.Locks(ctx, "acct:admin")
	if len(locks) != 0 {
		t.Fatalf("expected no locks, got %+v", locks)
	}
	if len(sink.Records()) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.Records()))
	}
}

func TestLockOperationsRequireAdmin(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedBalance(store, "acct:user", 1_000)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:user", "r", 100, time.Hour); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("lock: expected unauthorized, got %v", err)
	}
	if _, err := mgr.TransferWithLock(ctx, "acct:user", "acct:other", "r", 100, time.Hour); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("transfer with lock: expected unauthorized, got %v", err)
	}
	if _, err := mgr.ExtendLock(ctx, "acct:user", "r", time.Hour); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("extend: expected unauthorized, got %v", err)
	}
	if _, err := mgr.IncreaseLockAmount(ctx, "acct:user", "r", 100); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("increase: expected unauthorized, got %v", err)
	}
	if _, err := mgr.Unlock(ctx, "acct:user", "acct:user"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unlock: expected unauthorized, got %v", err)
	}
}

func TestTransferWithLockRecordsAgainstRecipient(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.TransferWithLock(ctx, "acct:admin", "acct:grantee", "cliff", 3_000, time.Hour); err != nil {
		t.Fatalf("transfer with lock: %v", err)
	}

	adminBalance, _ := led.BalanceOf(ctx, "acct:admin")
	granteeBalance, _ := led.BalanceOf(ctx, "acct:grantee")
	if adminBalance != 7_000 || granteeBalance != 0 {
		t.Fatalf("expected payer debited and recipient spendable untouched, got %d/%d", adminBalance, granteeBalance)
	}
	locked, _ := mgr.TokensLocked(ctx, "acct:grantee", "cliff")
	if locked != 3_000 {
		t.Fatalf("expected lock recorded against recipient, got %d", locked)
	}
	ownLocked, _ := mgr.TokensLocked(ctx, "acct:admin", "cliff")
	if ownLocked != 0 {
		t.Fatalf("expected no lock against payer, got %d", ownLocked)
	}
}

func TestExtendLockPushesUnlockTime(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 1_000)
	mgr := NewLockManager(led)
	SetClock(mgr, func() time.Time { return lockEpoch })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 500, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	lock, err := mgr.ExtendLock(ctx, "acct:admin", "vesting", 30*time.Minute)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if !lock.UnlockTime.Equal(lockEpoch.Add(90 * time.Minute)) {
		t.Fatalf("expected unlock pushed to epoch+90m, got %v", lock.UnlockTime)
	}
	if lock.Amount != 500 {
		t.Fatalf("expected amount unchanged, got %d", lock.Amount)
	}
}

func TestExtendLockMissing(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	mgr := NewLockManager(led)

	if _, err := mgr.ExtendLock(context.Background(), "acct:admin", "vesting", time.Hour); !errors.Is(err, ErrNoSuchLock) {
		t.Fatalf("expected no such lock, got %v", err)
	}
}

func TestExtendLockRejectsNegativeDuration(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 1_000)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 500, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := mgr.ExtendLock(ctx, "acct:admin", "vesting", -time.Minute); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestIncreaseLockAmount(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 2_000)
	mgr := NewLockManager(led)
	SetClock(mgr, func() time.Time { return lockEpoch })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 1_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	lock, err := mgr.IncreaseLockAmount(ctx, "acct:admin", "vesting", 500)
	if err != nil {
		t.Fatalf("increase: %v", err)
	}
	if lock.Amount != 1_500 {
		t.Fatalf("expected amount 1500, got %d", lock.Amount)
	}
	if !lock.UnlockTime.Equal(lockEpoch.Add(time.Hour)) {
		t.Fatalf("expected unlock time unchanged, got %v", lock.UnlockTime)
	}
	escrow, _ := led.BalanceOf(ctx, EscrowAccount)
	balance, _ := led.BalanceOf(ctx, "acct:admin")
	if escrow != 1_500 || balance != 500 {
		t.Fatalf("expected escrow 1500 and balance 500, got %d/%d", escrow, balance)
	}
}

func TestIncreaseLockMissing(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 1_000)
	mgr := NewLockManager(led)

	if _, err := mgr.IncreaseLockAmount(context.Background(), "acct:admin", "vesting", 100); !errors.Is(err, ErrNoSuchLock) {
		t.Fatalf("expected no such lock, got %v", err)
	}
}

func TestIncreaseLockInsufficientBalance(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 1_000)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 1_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := mgr.IncreaseLockAmount(ctx, "acct:admin", "vesting", 1); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if locked, _ := mgr.TokensLocked(ctx, "acct:admin", "vesting"); locked != 1_000 {
		t.Fatalf("expected lock amount unchanged, got %d", locked)
	}
}

func TestUnlockClaimsMaturedLocks(t *testing.T) {
	led, store, sink := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "cliff", 1_000, time.Hour); err != nil {
		t.Fatalf("lock cliff: %v", err)
	}
	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 2_000, 48*time.Hour); err != nil {
		t.Fatalf("lock vesting: %v", err)
	}

	now = lockEpoch.Add(2 * time.Hour)
	unlocked, err := mgr.Unlock(ctx, "acct:admin", "acct:admin")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if unlocked != 1_000 {
		t.Fatalf("expected 1000 unlocked, got %d", unlocked)
	}

	if balance, _ := led.BalanceOf(ctx, "acct:admin"); balance != 8_000 {
		t.Fatalf("expected balance 8000, got %d", balance)
	}
	if stillLocked, _ := mgr.TokensLocked(ctx, "acct:admin", "vesting"); stillLocked != 2_000 {
		t.Fatalf("expected vesting still locked, got %d", stillLocked)
	}
	lock, found, _ := mgr.Locked(ctx, "acct:admin", "cliff")
	if !found || !lock.Claimed {
		t.Fatalf("expected cliff claimed, got %+v found=%v", lock, found)
	}

	records := sink.Records()
	last := records[len(records)-1]
	prev := records[len(records)-2]
	if prev.Kind != events.KindUnlocked || last.Kind != events.KindTransfer {
		t.Fatalf("expected unlocked then transfer, got %s then %s", prev.Kind, last.Kind)
	}
	transfer := last.Data.(events.Transfer)
	if transfer.From != EscrowAccount || transfer.To != "acct:admin" || transfer.Amount != 1_000 {
		t.Fatalf("unexpected return transfer: %+v", transfer)
	}
}

func TestUnlockIdempotent(t *testing.T) {
	led, store, sink := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 5_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 1_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	now = lockEpoch.Add(2 * time.Hour)

	first, err := mgr.Unlock(ctx, "acct:admin", "acct:admin")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if first != 1_000 {
		t.Fatalf("expected 1000 unlocked, got %d", first)
	}
	recordsAfterFirst := len(sink.Records())

	second, err := mgr.Unlock(ctx, "acct:admin", "acct:admin")
	if err != nil {
		t.Fatalf("repeat unlock: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected repeat unlock to claim nothing, got %d", second)
	}
	if balance, _ := led.BalanceOf(ctx, "acct:admin"); balance != 5_000 {
		t.Fatalf("expected balance restored to 5000, got %d", balance)
	}
	if len(sink.Records()) != recordsAfterFirst {
		t.Fatalf("expected no records from empty unlock, got %d new", len(sink.Records())-recordsAfterFirst)
	}
}

func TestUnlockBatchesMaturedLocksIntoOneTransfer(t *testing.T) {
	led, store, sink := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "cliff", 1_000, time.Hour); err != nil {
		t.Fatalf("lock cliff: %v", err)
	}
	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 2_000, 2*time.Hour); err != nil {
		t.Fatalf("lock vesting: %v", err)
	}

	now = lockEpoch.Add(3 * time.Hour)
	unlocked, err := mgr.Unlock(ctx, "acct:admin", "acct:admin")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if unlocked != 3_000 {
		t.Fatalf("expected 3000 unlocked, got %d", unlocked)
	}

	records := sink.Records()
	if len(records) != 7 {
		t.Fatalf("expected 7 records, got %d", len(records))
	}
	firstClaim := records[4].Data.(events.Unlocked)
	secondClaim := records[5].Data.(events.Unlocked)
	if firstClaim.Reason != "cliff" || secondClaim.Reason != "vesting" {
		t.Fatalf("expected claims in first-use order, got %s then %s", firstClaim.Reason, secondClaim.Reason)
	}
	transfer := records[6].Data.(events.Transfer)
	if records[6].Kind != events.KindTransfer || transfer.Amount != 3_000 {
		t.Fatalf("expected one batched transfer of 3000, got %+v", records[6])
	}
}

func TestRelockAfterClaim(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 5_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 1_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	now = lockEpoch.Add(2 * time.Hour)
	if _, err := mgr.Unlock(ctx, "acct:admin", "acct:admin"); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 500, time.Hour); err != nil {
		t.Fatalf("relock: %v", err)
	}
	if locked, _ := mgr.TokensLocked(ctx, "acct:admin", "vesting"); locked != 500 {
		t.Fatalf("expected fresh lock of 500, got %d", locked)
	}
	locks, _ := mgr.Locks(ctx, "acct:admin")
	if len(locks) != 1 || locks[0].Reason != "vesting" || locks[0].Claimed {
		t.Fatalf("expected one live vesting lock, got %+v", locks)
	}
}

func TestTokensLockedAtTimeIgnoresClaim(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 5_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 1_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}

	during, _ := mgr.TokensLockedAtTime(ctx, "acct:admin", "vesting", lockEpoch.Add(30*time.Minute))
	if during != 1_000 {
		t.Fatalf("expected 1000 locked before maturity, got %d", during)
	}
	after, _ := mgr.TokensLockedAtTime(ctx, "acct:admin", "vesting", lockEpoch.Add(2*time.Hour))
	if after != 0 {
		t.Fatalf("expected 0 locked after maturity, got %d", after)
	}

	now = lockEpoch.Add(2 * time.Hour)
	if _, err := mgr.Unlock(ctx, "acct:admin", "acct:admin"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	claimed, _ := mgr.TokensLockedAtTime(ctx, "acct:admin", "vesting", lockEpoch.Add(30*time.Minute))
	if claimed != 1_000 {
		t.Fatalf("expected point-in-time amount unaffected by claim, got %d", claimed)
	}
}

func TestUnlockableViews(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "cliff", 1_000, time.Hour); err != nil {
		t.Fatalf("lock cliff: %v", err)
	}
	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 2_000, 4*time.Hour); err != nil {
		t.Fatalf("lock vesting: %v", err)
	}

	now = lockEpoch.Add(2 * time.Hour)
	cliff, _ := mgr.TokensUnlockable(ctx, "acct:admin", "cliff")
	vesting, _ := mgr.TokensUnlockable(ctx, "acct:admin", "vesting")
	if cliff != 1_000 || vesting != 0 {
		t.Fatalf("expected 1000/0 unlockable, got %d/%d", cliff, vesting)
	}
	total, _ := mgr.UnlockableTokens(ctx, "acct:admin")
	if total != 1_000 {
		t.Fatalf("expected total unlockable 1000, got %d", total)
	}

	now = lockEpoch.Add(5 * time.Hour)
	total, _ = mgr.UnlockableTokens(ctx, "acct:admin")
	if total != 3_000 {
		t.Fatalf("expected total unlockable 3000, got %d", total)
	}
}

func TestLockZeroDurationImmediatelyUnlockable(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 1_000)
	mgr := NewLockManager(led)
	SetClock(mgr, func() time.Time { return lockEpoch })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "instant", 700, 0); err != nil {
		t.Fatalf("lock: %v", err)
	}
	unlockable, _ := mgr.TokensUnlockable(ctx, "acct:admin", "instant")
	if unlockable != 700 {
		t.Fatalf("expected 700 immediately unlockable, got %d", unlockable)
	}
	unlocked, err := mgr.Unlock(ctx, "acct:admin", "acct:admin")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if unlocked != 700 {
		t.Fatalf("expected 700 unlocked, got %d", unlocked)
	}
}

func TestTotalBalanceOf(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 4_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	total, err := mgr.TotalBalanceOf(ctx, "acct:admin")
	if err != nil {
		t.Fatalf("total balance: %v", err)
	}
	if total != 10_000 {
		t.Fatalf("expected total 10000 with live lock, got %d", total)
	}

	now = lockEpoch.Add(2 * time.Hour)
	if _, err := mgr.Unlock(ctx, "acct:admin", "acct:admin"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	total, _ = mgr.TotalBalanceOf(ctx, "acct:admin")
	if total != 10_000 {
		t.Fatalf("expected total 10000 after claim, got %d", total)
	}
}

func TestSnapshotTracksEscrow(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	ctx := context.Background()

	if _, err := mgr.Lock(ctx, "acct:admin", "vesting", 4_000, time.Hour); err != nil {
		t.Fatalf("lock: %v", err)
	}
	snap, err := led.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Total != 10_000 || snap.Escrowed != 4_000 || snap.Circulating != 6_000 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestUnlockTargetsOtherAccounts(t *testing.T) {
	led, store, _ := newTestLedger(t)
	SeedRole(store, "acct:admin", RoleAdmin)
	SeedBalance(store, "acct:admin", 10_000)
	mgr := NewLockManager(led)
	now := lockEpoch
	SetClock(mgr, func() time.Time { return now })
	ctx := context.Background()

	if _, err := mgr.TransferWithLock(ctx, "acct:admin", "acct:grantee", "grant", 2_000, time.Hour); err != nil {
		t.Fatalf("transfer with lock: %v", err)
	}
	now = lockEpoch.Add(2 * time.Hour)
	unlocked, err := mgr.Unlock(ctx, "acct:admin", "acct:grantee")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if unlocked != 2_000 {
		t.Fatalf("expected 2000 unlocked, got %d", unlocked)
	}
	if balance, _ := led.BalanceOf(ctx, "acct:grantee"); balance != 2_000 {
		t.Fatalf("expected grantee credited 2000, got %d", balance)
	}
}
