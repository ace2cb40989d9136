package ports

import (
	"context"
	"time"
)

// CreateClientInput carries the raw attributes of a new client.
type CreateClientInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
	BirthDate string
	Address   string
	Phone     string
	// Role is optional; empty means domain.RoleClient.
	Role string
}

// ListClientsInput carries the list filters as received from the transport.
type ListClientsInput struct {
	Name     string
	Email    string
	Username string
	// IsActive is "", "true" or "false".
	IsActive string
}

// GetClientInput identifies a single client.
type GetClientInput struct {
	ID string
	// IncludeSensitive adds the credential verifier to the result.
	IncludeSensitive bool
}

// UpdateClientInput carries a partial update. Nil fields are not changed.
type UpdateClientInput struct {
	ID        string
	FirstName *string
	LastName  *string
	Email     *string
	Username  *string
	BirthDate *string
	Address   *string
	Phone     *string
	IsActive  *bool
}

// UpdatePasswordInput carries a new secret for an existing client.
type UpdatePasswordInput struct {
	ID       string
	Password string
}

// VerifyCredentialsInput carries a username and secret pair to check.
type VerifyCredentialsInput struct {
	Username string
	Password string
}

// ClientDetail is the single-record view. PasswordHash is empty unless the
// caller asked for sensitive data.
type ClientDetail struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Username     string
	PasswordHash string
	BirthDate    string
	Address      string
	Phone        string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClientSummary is the list-row view.
type ClientSummary struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Username  string
	BirthDate string
	Address   string
	Phone     string
	Role      string
	IsActive  bool
	CreatedAt time.Time
}

// ListClientsResult is returned by ListClients.
type ListClientsResult struct {
	Count int
	Items []ClientSummary
}

// ClientService defines the client lifecycle use cases shared by every
// transport.
type ClientService interface {
	CreateClient(ctx context.Context, input CreateClientInput) (*ClientDetail, error)
	ListClients(ctx context.Context, input ListClientsInput) (*ListClientsResult, error)
	GetClient(ctx context.Context, input GetClientInput) (*ClientDetail, error)
	UpdateClient(ctx context.Context, input UpdateClientInput) (*ClientDetail, error)
	UpdatePassword(ctx context.Context, input UpdatePasswordInput) error
	DeleteClient(ctx context.Context, id string) error
	VerifyCredentials(ctx context.Context, input VerifyCredentialsInput) (*ClientDetail, error)
}
