package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken occurs when a token fails signature, shape, or expiry
// validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the registered claim set plus the principal's ledger address.
type Claims struct {
	jwt.RegisteredClaims
	Address string `json:"addr"`
	Name    string `json:"name,omitempty"`
}

// Sign issues an HS256 token for the principal. It returns the signed token
// and its expiry.
func Sign(address, name string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Address: address,
		Name:    name,
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a token against the secret and returns its claims.
func Parse(tokenString string, secret []byte) (Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}
