package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound occurs when no principal matches the lookup.
	ErrNotFound = errors.New("principal not found")
	// ErrNameTaken occurs when a registration reuses an existing name.
	ErrNameTaken = errors.New("name already registered")
)

// Repository persists principals.
type Repository interface {
	Create(ctx context.Context, principal Principal) error
	FindByName(ctx context.Context, name string) (Principal, error)
	FindByAddress(ctx context.Context, address string) (Principal, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed principal repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new principal.
func (r *PostgresRepository) Create(ctx context.Context, principal Principal) error {
	const query = `INSERT INTO principals (address, name, secret_hash, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, principal.Address, principal.Name, string(principal.SecretHash), principal.CreatedAt.UTC())
	return err
}

// FindByName fetches a principal by its unique name.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (Principal, error) {
	const query = `SELECT address, name, secret_hash, created_at FROM principals WHERE name = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, name))
}

// FindByAddress fetches a principal by its account address.
func (r *PostgresRepository) FindByAddress(ctx context.Context, address string) (Principal, error) {
	const query = `SELECT address, name, secret_hash, created_at FROM principals WHERE address = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, address))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (Principal, error) {
	var (
		principal Principal
		hash      string
		createdAt time.Time
	)
	if err := row.Scan(&principal.Address, &principal.Name, &hash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, ErrNotFound
		}
		return Principal{}, err
	}
	principal.SecretHash = []byte(hash)
	principal.CreatedAt = createdAt.UTC()
	return principal, nil
}
