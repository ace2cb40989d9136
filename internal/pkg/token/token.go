// Package token issues and verifies the HS256 bearer tokens accepted by the
// HTTP and gRPC front-ends when authentication is enabled.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissing   = errors.New("missing authorization header")
	ErrMalformed = errors.New("invalid authorization header")
	ErrInvalid   = errors.New("invalid token")
)

const defaultTTL = 24 * time.Hour

// Claims are the token fields the services care about.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for subject carrying username and role.
func Issue(secret, subject, username, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse validates a raw token string.
func Parse(raw, secret string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// FromHeader validates an "Authorization: Bearer <token>" value.
func FromHeader(header, secret string) (*Claims, error) {
	if header == "" {
		return nil, ErrMissing
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return nil, ErrMalformed
	}
	return Parse(strings.TrimSpace(raw), secret)
}
