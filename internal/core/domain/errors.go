package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the core wraps exactly one of these so
// adapters can map it with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrClientNotFound  = kindError{kind: ErrNotFound, msg: "client not found"}
	ErrEmailTaken      = kindError{kind: ErrConflict, msg: "email already registered"}
	ErrUsernameTaken   = kindError{kind: ErrConflict, msg: "username already registered"}
	ErrDuplicateClient = kindError{kind: ErrConflict, msg: "email or username already registered"}

	// ErrInvalidCredentials deliberately does not reveal whether the username
	// exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type kindError struct {
	kind error
	msg  string
}

func (e kindError) Error() string { return e.msg }

func (e kindError) Unwrap() error { return e.kind }

// Violation describes one failed validation rule on one field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a single validation pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrInvalidInput.Error()
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError returns nil when no violations were collected so callers
// can return its result directly.
func NewValidationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
