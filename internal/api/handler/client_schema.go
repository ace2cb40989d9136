package handler

import (
	"time"

	"github.com/censudex/clients-service/internal/core/domain"
)

// ErrorResponse is the standard error envelope returned on 4xx/5xx responses.
type ErrorResponse struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// --- Requests ---

type createClientRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	BirthDate string `json:"birthDate" example:"1990-05-15"`
	Address   string `json:"address"`
	Phone     string `json:"phone" example:"+56912345678"`
	Role      string `json:"role,omitempty" enums:"client,admin"`
}

// Absent fields stay nil and are left untouched.
type updateClientRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

type verifyCredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type listClientsQuery struct {
	Name     string `query:"name"`
	Email    string `query:"email"`
	Username string `query:"username"`
	IsActive string `query:"isActive" json:"isActive" validate:"omitempty,oneof=true false"`
}

// --- Responses ---

type clientResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	// Password holds the bcrypt verifier, only with includePassword=true.
	Password  string    `json:"password,omitempty"`
	BirthDate string    `json:"birthDate"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type clientSummaryResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	BirthDate string    `json:"birthDate"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type clientEnvelope struct {
	Client clientResponse `json:"client"`
}

type clientMessageResponse struct {
	Message string         `json:"message"`
	Client  clientResponse `json:"client"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type listClientsResponse struct {
	Count   int                     `json:"count"`
	Clients []clientSummaryResponse `json:"clients"`
}
