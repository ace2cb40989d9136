// Package memory provides a process-local client store for development and
// tests. Uniqueness is checked under the write lock, which makes it the
// store's constraint rather than a best-effort pre-check.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
)

// ClientRepository implements ports.ClientRepository in memory.
type ClientRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Client
	now  func() time.Time
}

var (
	_ ports.ClientRepository = (*ClientRepository)(nil)
	_ ports.Pinger           = (*ClientRepository)(nil)
)

func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		byID: make(map[string]*domain.Client),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *ClientRepository) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; exists {
		return nil, domain.ErrDuplicateClient
	}
	if err := r.conflict(&c.Email, &c.Username, ""); err != nil {
		return nil, err
	}

	stored := clone(c)
	now := r.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.DeletedAt = nil
	r.byID[stored.ID] = stored

	out := clone(stored)
	out.PasswordHash = ""
	return out, nil
}

func (r *ClientRepository) FindByID(_ context.Context, id string, includeSensitive bool) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.visible(id)
	if err != nil {
		return nil, err
	}
	out := clone(c)
	if !includeSensitive {
		out.PasswordHash = ""
	}
	return out, nil
}

func (r *ClientRepository) FindByUsername(_ context.Context, username string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if !c.Deleted() && c.Username == username {
			return clone(c), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *ClientRepository) FindByFilter(_ context.Context, f domain.ClientFilter) ([]*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Client, 0)
	for _, c := range r.byID {
		if c.Deleted() || !matches(c, f) {
			continue
		}
		row := clone(c)
		row.PasswordHash = ""
		row.UpdatedAt = time.Time{}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ClientRepository) Update(_ context.Context, id string, p domain.ClientPatch) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.visible(id)
	if err != nil {
		return nil, err
	}
	if err := r.conflict(p.Email, p.Username, id); err != nil {
		return nil, err
	}

	apply(c, p)
	c.UpdatedAt = r.now()

	out := clone(c)
	out.PasswordHash = ""
	return out, nil
}

func (r *ClientRepository) UpdateCredential(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.visible(id)
	if err != nil {
		return err
	}
	c.PasswordHash = passwordHash
	c.UpdatedAt = r.now()
	return nil
}

func (r *ClientRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.visible(id)
	if err != nil {
		return err
	}
	now := r.now()
	c.IsActive = false
	c.DeletedAt = &now
	c.UpdatedAt = now
	return nil
}

// Ping always succeeds.
func (r *ClientRepository) Ping(context.Context) error {
	return nil
}

// visible must be called with the lock held.
func (r *ClientRepository) visible(id string) (*domain.Client, error) {
	c, ok := r.byID[id]
	if !ok || c.Deleted() {
		return nil, domain.ErrClientNotFound
	}
	return c, nil
}

// conflict checks every stored record, deleted ones included. It must be
// called with the write lock held.
func (r *ClientRepository) conflict(email, username *string, excludeID string) error {
	for id, c := range r.byID {
		if id == excludeID {
			continue
		}
		if email != nil && strings.EqualFold(c.Email, *email) {
			return domain.ErrEmailTaken
		}
		if username != nil && c.Username == *username {
			return domain.ErrUsernameTaken
		}
	}
	return nil
}

func matches(c *domain.Client, f domain.ClientFilter) bool {
	if f.Name != "" && !containsFold(c.FirstName, f.Name) && !containsFold(c.LastName, f.Name) {
		return false
	}
	if f.Email != "" && !containsFold(c.Email, f.Email) {
		return false
	}
	if f.Username != "" && !containsFold(c.Username, f.Username) {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func apply(c *domain.Client, p domain.ClientPatch) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Username != nil {
		c.Username = *p.Username
	}
	if p.BirthDate != nil {
		c.BirthDate = *p.BirthDate
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

func clone(c *domain.Client) *domain.Client {
	out := *c
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}
