package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/censudex/clients-service/internal/core/domain"
)

const (
	passwordMinLength = 8
	passwordMaxBytes  = 72 // bcrypt input limit
	specialCharacters = `!@#$%^&*(),.?":{}|<>`
)

var chileanMobile = regexp.MustCompile(`^(\+?56)?9[0-9]{8}$`)

// NormalizePhone removes every whitespace rune from a phone number.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}

// ParseDate parses a birth date. Full RFC 3339 timestamps are accepted and
// truncated to their calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Age returns the number of full years between birth and now.
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func (val *Validator) orgEmail(fl validator.FieldLevel) bool {
	email := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return strings.HasSuffix(email, "@"+val.emailDomain)
}

func (val *Validator) adult(fl validator.FieldLevel) bool {
	birth, err := ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return Age(birth, val.now()) >= MinimumAge
}

func clPhone(fl validator.FieldLevel) bool {
	return chileanMobile.MatchString(NormalizePhone(fl.Field().String()))
}

func calendarDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

func strongPassword(fl validator.FieldLevel) bool {
	return len(passwordViolations("", fl.Field().String())) == 0
}

// passwordViolations lists every unmet password requirement.
func passwordViolations(field, secret string) []domain.Violation {
	var upper, lower, digit, special bool
	for _, r := range secret {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(specialCharacters, r):
			special = true
		}
	}

	var out []domain.Violation
	add := func(rule, msg string) {
		out = append(out, domain.Violation{Field: field, Rule: rule, Message: msg})
	}
	if len([]rune(secret)) < passwordMinLength {
		add("min_length", "password must be at least 8 characters long")
	}
	if len(secret) > passwordMaxBytes {
		add("max_length", "password must be at most 72 bytes long")
	}
	if !upper {
		add("uppercase", "password must contain at least one uppercase letter")
	}
	if !lower {
		add("lowercase", "password must contain at least one lowercase letter")
	}
	if !digit {
		add("digit", "password must contain at least one number")
	}
	if !special {
		add("special", `password must contain at least one special character (!@#$%^&*(),.?":{}|<>)`)
	}
	return out
}
