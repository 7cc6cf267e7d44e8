package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 8

// Service manages the principal lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a principal with a fresh account address and a hashed
// secret.
func (s *Service) Register(ctx context.Context, creds Credentials) (Principal, error) {
	if creds.Name == "" {
		return Principal{}, errors.New("name is required")
	}
	if len(creds.Secret) < minSecretLength {
		return Principal{}, errors.New("secret must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Principal{}, err
	}

	principal := Principal{
		Address:    "acct:" + uuid.NewString(),
		Name:       creds.Name,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, principal); err != nil {
		return Principal{}, err
	}

	return principal, nil
}

// Authenticate verifies a name and secret pair.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	principal, err := s.repo.FindByName(ctx, creds.Name)
	if err != nil {
		return Principal{}, err
	}

	if err := bcrypt.CompareHashAndPassword(principal.SecretHash, []byte(creds.Secret)); err != nil {
		return Principal{}, errors.New("invalid secret")
	}

	return principal, nil
}

// Ensure creates a principal with a fixed address if none exists. Used at
// startup so the configured operator can log in on a fresh deployment.
func (s *Service) Ensure(ctx context.Context, address, name, secret string) (Principal, error) {
	principal, err := s.repo.FindByAddress(ctx, address)
	if err == nil {
		return principal, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Principal{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Principal{}, err
	}
	principal = Principal{
		Address:    address,
		Name:       name,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, principal); err != nil {
		return Principal{}, err
	}
	return principal, nil
}
