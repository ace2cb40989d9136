package metrics

import (
	"errors"
	"time"

	"github.com/censudex/clients-service/internal/core/domain"
)

// Outcome classifies an operation result for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "unauthenticated"
	default:
		return "error"
	}
}

// ObserveOperation records one finished operation.
func ObserveOperation(transport, operation string, start time.Time, err error) {
	OperationsTotal.WithLabelValues(transport, operation, Outcome(err)).Inc()
	OperationDuration.WithLabelValues(transport, operation).Observe(time.Since(start).Seconds())
}
