package handler

import (
	"github.com/censudex/clients-service/internal/core/validation"
)

// echoValidator lets Echo call c.Validate(req) with the client rule set, so
// edge failures carry the same violation list as the core.
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator(v *validation.Validator) *echoValidator {
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
