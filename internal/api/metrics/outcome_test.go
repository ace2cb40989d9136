package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/censudex/clients-service/internal/core/domain"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&domain.ValidationError{}, "invalid_input"},
		{domain.ErrClientNotFound, "not_found"},
		{fmt.Errorf("create: %w", domain.ErrEmailTaken), "conflict"},
		{domain.ErrInvalidCredentials, "unauthenticated"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		if got := Outcome(tc.err); got != tc.want {
			t.Fatalf("Outcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestObserveOperation(t *testing.T) {
	counter := OperationsTotal.WithLabelValues("grpc", "delete", "not_found")
	before := testutil.ToFloat64(counter)

	ObserveOperation("grpc", "delete", time.Now(), domain.ErrClientNotFound)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, got)
	}
}
