package security

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/censudex/clients-service/internal/api/metrics"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// BcryptCodec hashes and verifies client secrets with bcrypt.
type BcryptCodec struct {
	cost int
}

// NewBcryptCodec returns a codec using cost, falling back to DefaultCost when
// cost is outside bcrypt's accepted range.
func NewBcryptCodec(cost int) *BcryptCodec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptCodec{cost: cost}
}

// Hash returns a salted verifier for secret.
func (b *BcryptCodec) Hash(secret string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	metrics.CredentialHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches verifier. Malformed verifiers never
// match.
func (b *BcryptCodec) Verify(secret, verifier string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(secret)) == nil
}
