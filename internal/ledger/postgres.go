package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vesta-ledger/vesta/internal/events"
)

// ledgerAdvisoryLockID serializes units of work across every connection.
// The accounting invariants assume one writer at a time over the full state,
// so Update takes this transaction-scoped advisory lock before touching
// anything.
const ledgerAdvisoryLockID int64 = 0x766573746131 // "vesta1"

// PostgresStore persists ledger state in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store. The schema must have
// been migrated first; see the migrations package.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Update runs fn inside a database transaction that holds the ledger
// advisory lock, so concurrent units of work queue rather than interleave.
func (s *PostgresStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerAdvisoryLockID); err != nil {
		return err
	}
	if err := fn(&postgresTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// View runs fn inside a read-only transaction.
func (s *PostgresStore) View(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(&postgresTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type postgresTx struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *postgresTx) Balance(account string) (int64, error) {
	const query = `SELECT balance FROM accounts WHERE address = $1`
	var balance int64
	if err := t.tx.QueryRow(t.ctx, query, account).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

func (t *postgresTx) SetBalance(account string, amount int64) error {
	const query = `
        INSERT INTO accounts (address, balance) VALUES ($1, $2)
        ON CONFLICT (address) DO UPDATE SET balance = EXCLUDED.balance`
	_, err := t.tx.Exec(t.ctx, query, account, amount)
	return err
}

func (t *postgresTx) TotalSupply() (int64, error) {
	const query = `SELECT total_supply FROM ledger_state`
	var supply int64
	if err := t.tx.QueryRow(t.ctx, query).Scan(&supply); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return supply, nil
}

func (t *postgresTx) SetTotalSupply(amount int64) error {
	const query = `
        INSERT INTO ledger_state (id, total_supply) VALUES (TRUE, $1)
        ON CONFLICT (id) DO UPDATE SET total_supply = EXCLUDED.total_supply`
	_, err := t.tx.Exec(t.ctx, query, amount)
	return err
}

func (t *postgresTx) Allowance(owner, spender string) (int64, error) {
	const query = `SELECT amount FROM allowances WHERE owner = $1 AND spender = $2`
	var amount int64
	if err := t.tx.QueryRow(t.ctx, query, owner, spender).Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return amount, nil
}

func (t *postgresTx) SetAllowance(owner, spender string, amount int64) error {
	const query = `
        INSERT INTO allowances (owner, spender, amount) VALUES ($1, $2, $3)
        ON CONFLICT (owner, spender) DO UPDATE SET amount = EXCLUDED.amount`
	_, err := t.tx.Exec(t.ctx, query, owner, spender, amount)
	return err
}

func (t *postgresTx) GetLock(account, reason string) (Lock, bool, error) {
	const query = `SELECT amount, unlock_time, claimed FROM locks WHERE account = $1 AND reason = $2`
	var lock Lock
	if err := t.tx.QueryRow(t.ctx, query, account, reason).Scan(&lock.Amount, &lock.UnlockTime, &lock.Claimed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lock{}, false, nil
		}
		return Lock{}, false, err
	}
	return lock, true, nil
}

func (t *postgresTx) PutLock(account, reason string, lock Lock) error {
	// The foreign key on lock_reasons rejects writes for unindexed reasons.
	const query = `
        INSERT INTO locks (account, reason, amount, unlock_time, claimed) VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (account, reason) DO UPDATE
        SET amount = EXCLUDED.amount, unlock_time = EXCLUDED.unlock_time, claimed = EXCLUDED.claimed`
	_, err := t.tx.Exec(t.ctx, query, account, reason, lock.Amount, lock.UnlockTime, lock.Claimed)
	return err
}

func (t *postgresTx) LockReasons(account string) ([]string, error) {
	const query = `SELECT reason FROM lock_reasons WHERE account = $1 ORDER BY position`
	rows, err := t.tx.Query(t.ctx, query, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reasons []string
	for rows.Next() {
		var reason string
		if err := rows.Scan(&reason); err != nil {
			return nil, err
		}
		reasons = append(reasons, reason)
	}
	return reasons, rows.Err()
}

func (t *postgresTx) AddLockReason(account, reason string) error {
	const query = `
        INSERT INTO lock_reasons (account, reason) VALUES ($1, $2)
        ON CONFLICT (account, reason) DO NOTHING`
	_, err := t.tx.Exec(t.ctx, query, account, reason)
	return err
}

func (t *postgresTx) HasRole(principal string, role Role) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM role_grants WHERE principal = $1 AND role = $2)`
	var held bool
	if err := t.tx.QueryRow(t.ctx, query, principal, string(role)).Scan(&held); err != nil {
		return false, err
	}
	return held, nil
}

func (t *postgresTx) SetRole(principal string, role Role, granted bool) error {
	if granted {
		const query = `
            INSERT INTO role_grants (principal, role) VALUES ($1, $2)
            ON CONFLICT (principal, role) DO NOTHING`
		_, err := t.tx.Exec(t.ctx, query, principal, string(role))
		return err
	}
	const query = `DELETE FROM role_grants WHERE principal = $1 AND role = $2`
	_, err := t.tx.Exec(t.ctx, query, principal, string(role))
	return err
}

func (t *postgresTx) AppendEvent(record events.Record) error {
	payload, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	const query = `INSERT INTO events (id, kind, payload, recorded_at) VALUES ($1, $2, $3, $4)`
	_, err = t.tx.Exec(t.ctx, query, record.ID, record.Kind, payload, record.RecordedAt)
	return err
}

func (t *postgresTx) Events(limit int) ([]events.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	const query = `SELECT id, kind, payload, recorded_at FROM events ORDER BY seq DESC LIMIT $1`
	rows, err := t.tx.Query(t.ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []events.Record
	for rows.Next() {
		var (
			rec     events.Record
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Kind, &payload, &rec.RecordedAt); err != nil {
			return nil, err
		}
		rec.Data = json.RawMessage(payload)
		records = append(records, rec)
	}
	return records, rows.Err()
}
