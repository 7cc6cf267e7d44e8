package ledger

import "time"

// SeedBalance is a test helper that credits an account and grows total supply
// to match, bypassing role checks. It only works with the in-memory store.
func SeedBalance(s Store, account string, amount int64) {
	mem, ok := s.(*memoryStore)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.balances[account] += amount
	mem.supply += amount
}

// SeedRole is a test helper that grants a role directly. It only works with
// the in-memory store.
func SeedRole(s Store, principal string, role Role) {
	mem, ok := s.(*memoryStore)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.roles[roleKey{principal: principal, role: role}] = struct{}{}
}

// SetClock overrides the lock manager's time source. Intended for tests that
// need maturity to pass without sleeping.
func SetClock(m *LockManager, now func() time.Time) {
	m.now = now
}
