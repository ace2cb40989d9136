package ports

import (
	"context"

	"github.com/censudex/clients-service/internal/core/domain"
)

// ClientRepository defines persistence operations for clients.
//
// Every read excludes soft-deleted records. Uniqueness of email
// (case-insensitive) and username is enforced by the store itself; Create and
// Update translate a rejected write into a domain.ErrConflict error.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	// FindByID returns domain.ErrClientNotFound for unknown or deleted ids.
	// PasswordHash is only populated when includeSensitive is true.
	FindByID(ctx context.Context, id string, includeSensitive bool) (*domain.Client, error)
	// FindByUsername always populates PasswordHash.
	FindByUsername(ctx context.Context, username string) (*domain.Client, error)
	// FindByFilter returns matching clients newest first.
	FindByFilter(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error)
	Update(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error)
	UpdateCredential(ctx context.Context, id, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
}

// Pinger is implemented by stores that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
