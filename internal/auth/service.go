package auth

import (
	"context"
	"time"

	"github.com/vesta-ledger/vesta/internal/config"
	"github.com/vesta-ledger/vesta/internal/identity"
)

// Service issues and refreshes access tokens for principals.
type Service struct {
	cfg  config.Config
	repo identity.Repository
}

// NewService creates a new auth service.
func NewService(cfg config.Config, repo identity.Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

// TokenPair bundles the tokens returned by a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues an access and refresh token pair for an already authenticated
// principal.
func (s *Service) Login(principal identity.Principal) (TokenPair, error) {
	access, expiresAt, err := Sign(principal.Address, principal.Name, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := Sign(principal.Address, principal.Name, []byte(s.cfg.RefreshSecret), s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// Refresh verifies a refresh token and issues a new access token for the
// principal it names.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := Parse(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, err
	}
	principal, err := s.repo.FindByAddress(ctx, claims.Address)
	if err != nil {
		return "", 0, ErrInvalidToken
	}
	access, _, err := Sign(principal.Address, principal.Name, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}
