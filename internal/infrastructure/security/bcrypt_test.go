package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptCodec_RoundTrip(t *testing.T) {
	codec := NewBcryptCodec(bcrypt.MinCost)

	hash, err := codec.Hash("Password123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "Password123!" {
		t.Fatalf("verifier must differ from the secret")
	}
	if !codec.Verify("Password123!", hash) {
		t.Fatalf("expected secret to verify")
	}
	if codec.Verify("Password123?", hash) {
		t.Fatalf("expected a different secret to fail verification")
	}
}

func TestBcryptCodec_Salted(t *testing.T) {
	codec := NewBcryptCodec(bcrypt.MinCost)

	a, err := codec.Hash("Password123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	b, err := codec.Hash("Password123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if a == b {
		t.Fatalf("expected two hashes of the same secret to differ")
	}
}

func TestBcryptCodec_MalformedVerifier(t *testing.T) {
	codec := NewBcryptCodec(bcrypt.MinCost)
	if codec.Verify("Password123!", "not-a-bcrypt-hash") {
		t.Fatalf("malformed verifier must not match")
	}
	if codec.Verify("Password123!", "") {
		t.Fatalf("empty verifier must not match")
	}
}

func TestNewBcryptCodec_InvalidCostFallsBack(t *testing.T) {
	codec := NewBcryptCodec(99)
	if codec.cost != DefaultCost {
		t.Fatalf("expected cost %d, got %d", DefaultCost, codec.cost)
	}

	hash, err := codec.Hash("Password123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Fatalf("unexpected hash prefix: %s", hash[:7])
	}
}
