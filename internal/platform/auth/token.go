package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints HS256 access tokens for authenticated providers.
type TokenIssuer struct {
	signingKey []byte
	issuer     string
	expiry     time.Duration
}

// NewTokenIssuer creates a TokenIssuer. expiry controls how long issued
// tokens remain valid.
func NewTokenIssuer(signingKey []byte, issuer string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signingKey: signingKey,
		issuer:     issuer,
		expiry:     expiry,
	}
}

// Issue creates a signed token for the given subject (provider email) and
// roles. It returns the token string and its expiry time.
func (i *TokenIssuer) Issue(subject string, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.expiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}
