package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/vesta-ledger/vesta/internal/events"
)

var errReadOnlyTx = errors.New("ledger: write inside read-only unit of work")

type allowanceKey struct {
	owner   string
	spender string
}

type lockKey struct {
	account string
	reason  string
}

type roleKey struct {
	principal string
	role      Role
}

type memoryStore struct {
	mu sync.RWMutex

	balances   map[string]int64
	supply     int64
	allowances map[allowanceKey]int64
	locks      map[lockKey]Lock
	reasons    map[string][]string
	indexed    map[lockKey]struct{}
	roles      map[roleKey]struct{}
	journal    []events.Record
}

// NewMemoryStore creates a concurrency-safe in-memory store. Units of work
// buffer their writes and apply them only when the unit returns without
// error, so a failed operation leaves no trace. Useful for unit tests and
// single-node development runs.
func NewMemoryStore() Store {
	return &memoryStore{
		balances:   make(map[string]int64),
		allowances: make(map[allowanceKey]int64),
		locks:      make(map[lockKey]Lock),
		reasons:    make(map[string][]string),
		indexed:    make(map[lockKey]struct{}),
		roles:      make(map[roleKey]struct{}),
	}
}

func (s *memoryStore) Update(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := newMemoryTx(s, false)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *memoryStore) View(_ context.Context, fn func(tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(newMemoryTx(s, true))
}

// memoryTx overlays staged writes on top of the store's committed state.
// Reads consult the overlay first so a unit of work observes its own writes.
type memoryTx struct {
	store    *memoryStore
	readOnly bool

	balances   map[string]int64
	supply     *int64
	allowances map[allowanceKey]int64
	locks      map[lockKey]Lock
	reasons    map[string][]string
	indexed    map[lockKey]struct{}
	roles      map[roleKey]bool
	journal    []events.Record
}

func newMemoryTx(s *memoryStore, readOnly bool) *memoryTx {
	return &memoryTx{
		store:      s,
		readOnly:   readOnly,
		balances:   make(map[string]int64),
		allowances: make(map[allowanceKey]int64),
		locks:      make(map[lockKey]Lock),
		reasons:    make(map[string][]string),
		indexed:    make(map[lockKey]struct{}),
		roles:      make(map[roleKey]bool),
	}
}

func (tx *memoryTx) commit() {
	st := tx.store
	for account, balance := range tx.balances {
		st.balances[account] = balance
	}
	if tx.supply != nil {
		st.supply = *tx.supply
	}
	for key, amount := range tx.allowances {
		st.allowances[key] = amount
	}
	for key, lock := range tx.locks {
		st.locks[key] = lock
	}
	for account, reasons := range tx.reasons {
		st.reasons[account] = append(st.reasons[account], reasons...)
	}
	for key := range tx.indexed {
		st.indexed[key] = struct{}{}
	}
	for key, granted := range tx.roles {
		if granted {
			st.roles[key] = struct{}{}
		} else {
			delete(st.roles, key)
		}
	}
	st.journal = append(st.journal, tx.journal...)
}

func (tx *memoryTx) Balance(account string) (int64, error) {
	if balance, ok := tx.balances[account]; ok {
		return balance, nil
	}
	return tx.store.balances[account], nil
}

func (tx *memoryTx) SetBalance(account string, amount int64) error {
	if tx.readOnly {
		return errReadOnlyTx
	}
	tx.balances[account] = amount
	return nil
}

func (tx *memoryTx) TotalSupply() (int64, error) {
	if tx.supply != nil {
		return *tx.supply, nil
	}
	return tx.store.supply, nil
}

func (tx *memoryTx) SetTotalSupply(amount int64) error {
	if tx.readOnly {
		return errReadOnlyTx
	}
	tx.supply = &amount
	return nil
}

func (tx *memoryTx) Allowance(owner, spender string) (int64, error) {
	key := allowanceKey{owner: owner, spender: spender}
	if amount, ok := tx.allowances[key]; ok {
		return amount, nil
	}
	return tx.store.allowances[key], nil
}

func (tx *memoryTx) SetAllowance(owner, spender string, amount int64) error {
	if tx.readOnly {
		return errReadOnlyTx
	}
	tx.allowances[allowanceKey{owner: owner, spender: spender}] = amount
	return nil
}

func (tx *memoryTx) GetLock(account, reason string) (Lock, bool, error) {
	key := lockKey{account: account, reason: reason}
	if lock, ok := tx.locks[key]; ok {
		return lock, true, nil
	}
	lock, ok := tx.store.locks[key]
	return lock, ok, nil
}

func (tx *memoryTx) PutLock(account, reason string, lock Lock) error {
	if tx.readOnly {
		return errReadOnlyTx
	}
	key := lockKey{account: account, reason: reason}
	if !tx.isIndexed(key) {
		return errors.New("ledger: lock reason not indexed")
	}
	tx.locks[key] = lock
	return nil
}

func (tx *memoryTx) LockReasons(account string) ([]string, error) {
	base := tx.store.reasons[account]
	staged := tx.reasons[account]
	out := make([]string, 0, len(base)+len(staged))
	out = append(out, base...)
	out = append(out, staged...)
	return out, nil
}

func (tx *memoryTx) AddLockReason(account, reason string) error {
	if tx.readOnly {
		return errReadOnlyTx
	}
	key := lockKey{account: account, reason: reason}
	if tx.isIndexed(key) {
		return nil
	}
	tx.indexed[key] = struct{}{}
	tx.reasons[account] = append(tx.reasons[account], reason)
	return nil
}

func (tx *memoryTx) isIndexed(key lockKey) bool {
	if _, ok := tx.indexed[key]; ok {
		return true
	}
	_, ok := tx.store.indexed[key]
	return ok
}

func (tx *memoryTx) HasRole(principal string, role Role) (bool, error) {
	key := roleKey{principal: principal, role: role}
	if granted, ok := tx.roles[key]; ok {
		return granted, nil
	}
	_, ok := tx.store.roles[key]
	return ok, nil
}

func (tx *memoryTx) SetRole(principal string, role Role, granted bool) error {
	if tx.readOnly {
		return errReadOnlyTx
	}
	tx.roles[roleKey{principal: principal, role: role}] = granted
	return nil
}

func (tx *memoryTx) AppendEvent(record events.Record) error {
	if tx.readOnly {
		return errReadOnlyTx
	}
	tx.journal = append(tx.journal, record)
	return nil
}

func (tx *memoryTx) Events(limit int) ([]events.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	all := tx.store.journal
	if len(tx.journal) > 0 {
		combined := make([]events.Record, 0, len(all)+len(tx.journal))
		combined = append(combined, all...)
		combined = append(combined, tx.journal...)
		all = combined
	}
	if limit > len(all) {
		limit = len(all)
	}
	out := make([]events.Record, 0, limit)
	for i := len(all) - 1; len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
