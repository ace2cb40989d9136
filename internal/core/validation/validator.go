// Package validation holds the client field rules shared by every transport.
//
// Rules are expressed as go-playground/validator tags on private rule structs.
// A failed pass is reported as a *domain.ValidationError listing every
// offending field, never just the first one.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
)

const (
	// DefaultEmailDomain is the organizational domain every client email must use.
	DefaultEmailDomain = "censudex.cl"
	// MinimumAge is the minimum age in full years of a client.
	MinimumAge = 18
)

// Options configures a Validator.
type Options struct {
	// EmailDomain defaults to DefaultEmailDomain.
	EmailDomain string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Validator runs the client rule set.
type Validator struct {
	v           *validator.Validate
	emailDomain string
	now         func() time.Time
}

// New builds a Validator with the custom client rules registered.
func New(opts Options) *Validator {
	domainName := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(opts.EmailDomain)), "@")
	if domainName == "" {
		domainName = DefaultEmailDomain
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	val := &Validator{
		v:           validator.New(validator.WithRequiredStructEnabled()),
		emailDomain: domainName,
		now:         now,
	}

	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs.
	_ = val.v.RegisterValidation("org_email", val.orgEmail)
	_ = val.v.RegisterValidation("cl_phone", clPhone)
	_ = val.v.RegisterValidation("strong_password", strongPassword)
	_ = val.v.RegisterValidation("calendar_date", calendarDate)
	_ = val.v.RegisterValidation("adult", val.adult)

	return val
}

// EmailDomain returns the organizational domain enforced on emails.
func (val *Validator) EmailDomain() string {
	return val.emailDomain
}

// Struct validates any tagged struct and translates failures into a
// *domain.ValidationError.
func (val *Validator) Struct(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	violations := make([]domain.Violation, 0, len(ve))
	for _, fe := range ve {
		violations = append(violations, val.translate(fe)...)
	}
	return domain.NewValidationError(violations)
}

type createRules struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email,org_email"`
	Username  string `json:"username" validate:"required,min=3"`
	Password  string `json:"password" validate:"required,strong_password"`
	BirthDate string `json:"birthDate" validate:"required,calendar_date,adult"`
	Address   string `json:"address" validate:"required"`
	Phone     string `json:"phone" validate:"required,cl_phone"`
	Role      string `json:"role" validate:"omitempty,oneof=client admin"`
}

// ValidateCreate checks every attribute of a new client.
func (val *Validator) ValidateCreate(in ports.CreateClientInput) error {
	return val.Struct(createRules{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Username:  in.Username,
		Password:  in.Password,
		BirthDate: in.BirthDate,
		Address:   in.Address,
		Phone:     in.Phone,
		Role:      in.Role,
	})
}

// Present-but-empty values fail min=1; nil pointers are skipped.
type updateRules struct {
	ID        string  `json:"id" validate:"required,uuid"`
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,min=1,email,org_email"`
	Username  *string `json:"username" validate:"omitempty,min=3"`
	BirthDate *string `json:"birthDate" validate:"omitempty,min=1,calendar_date,adult"`
	Address   *string `json:"address" validate:"omitempty,min=1"`
	Phone     *string `json:"phone" validate:"omitempty,min=1,cl_phone"`
}

// ValidateUpdate checks the id and every field present in the update.
func (val *Validator) ValidateUpdate(in ports.UpdateClientInput) error {
	return val.Struct(updateRules{
		ID:        in.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Username:  in.Username,
		BirthDate: in.BirthDate,
		Address:   in.Address,
		Phone:     in.Phone,
	})
}

type idRules struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ValidateID checks that id is a well-formed UUID.
func (val *Validator) ValidateID(id string) error {
	return val.Struct(idRules{ID: id})
}

type passwordRules struct {
	ID       string `json:"id" validate:"required,uuid"`
	Password string `json:"password" validate:"required,strong_password"`
}

// ValidatePassword checks the target id and the strength of the new secret.
func (val *Validator) ValidatePassword(in ports.UpdatePasswordInput) error {
	return val.Struct(passwordRules{ID: in.ID, Password: in.Password})
}

type filterRules struct {
	IsActive string `json:"isActive" validate:"omitempty,oneof=true false"`
}

// ValidateFilter checks list filters.
func (val *Validator) ValidateFilter(in ports.ListClientsInput) error {
	return val.Struct(filterRules{IsActive: in.IsActive})
}

type credentialsRules struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ValidateCredentials checks that both halves of a credential pair are present.
func (val *Validator) ValidateCredentials(in ports.VerifyCredentialsInput) error {
	return val.Struct(credentialsRules{Username: in.Username, Password: in.Password})
}

func (val *Validator) translate(fe validator.FieldError) []domain.Violation {
	field := fe.Field()
	violation := func(msg string) []domain.Violation {
		return []domain.Violation{{Field: field, Rule: fe.Tag(), Message: msg}}
	}

	switch fe.Tag() {
	case "required":
		return violation(field + " is required")
	case "email":
		return violation(field + " must be a valid email")
	case "org_email":
		return violation(fmt.Sprintf("%s must belong to the @%s domain", field, val.emailDomain))
	case "min":
		if fe.Param() == "1" {
			return violation(field + " must not be empty")
		}
		return violation(fmt.Sprintf("%s must be at least %s characters long", field, fe.Param()))
	case "uuid":
		return violation(field + " must be a valid UUID")
	case "oneof":
		return violation(fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
	case "calendar_date":
		return violation(field + " must be a valid date (YYYY-MM-DD)")
	case "adult":
		return violation(fmt.Sprintf("client must be at least %d years old", MinimumAge))
	case "cl_phone":
		return violation(field + " must be a valid Chilean mobile number (+569XXXXXXXX)")
	case "strong_password":
		secret, _ := fe.Value().(string)
		return passwordViolations(field, secret)
	default:
		return violation(fmt.Sprintf("%s failed validation (%s)", field, fe.Tag()))
	}
}
