package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/infrastructure/db/memory"
)

const seededID = "5b9a8f8e-2c1d-4d53-9b8e-4f0b2f5f1a10"

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func seededStore(t *testing.T) *memory.ClientRepository {
	t.Helper()
	store := memory.NewClientRepository()
	_, err := store.Create(context.Background(), &domain.Client{
		ID:           seededID,
		FirstName:    "Juan",
		LastName:     "Pérez",
		Email:        "juan.perez@censudex.cl",
		Username:     "juanperez",
		PasswordHash: "$2a$10$verifier",
		BirthDate:    time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		Role:         domain.RoleClient,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestCachedClientRepository_DegradesWhenRedisIsDown(t *testing.T) {
	repo := NewCachedClientRepository(seededStore(t), unreachableClient(t), time.Minute, zerolog.Nop())
	ctx := context.Background()

	got, err := repo.FindByID(ctx, seededID, false)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.Username != "juanperez" || got.PasswordHash != "" {
		t.Fatalf("unexpected client: %+v", got)
	}

	phone := "+56987654321"
	if _, err := repo.Update(ctx, got.ID, domain.ClientPatch{Phone: &phone}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := repo.SoftDelete(ctx, got.ID); err != nil {
		t.Fatalf("SoftDelete returned error: %v", err)
	}
	if _, err := repo.FindByID(ctx, got.ID, false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCachedClientRepository_SensitiveReadsBypassCache(t *testing.T) {
	repo := NewCachedClientRepository(seededStore(t), unreachableClient(t), time.Minute, zerolog.Nop())

	got, err := repo.FindByID(context.Background(), seededID, true)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.PasswordHash != "$2a$10$verifier" {
		t.Fatalf("expected verifier on sensitive read")
	}
}

func TestCachedClientRepository_PingDelegates(t *testing.T) {
	repo := NewCachedClientRepository(seededStore(t), unreachableClient(t), 0, zerolog.Nop())
	if repo.ttl != defaultCacheTTL {
		t.Fatalf("expected default ttl, got %v", repo.ttl)
	}
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("expected memory store ping to succeed, got %v", err)
	}
}

func TestCachedClient_RoundTrip(t *testing.T) {
	in := &domain.Client{
		ID:        "id-1",
		FirstName: "Ana",
		Email:     "ana@censudex.cl",
		Role:      domain.RoleAdmin,
		IsActive:  true,
		BirthDate: time.Date(1985, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	out := fromDomain(in).toDomain()
	if out.ID != in.ID || out.Role != domain.RoleAdmin || !out.BirthDate.Equal(in.BirthDate) {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}

func inMemoryRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// pausingRepo holds the first FindByID after the row was loaded until
// release is closed.
type pausingRepo struct {
	ports.ClientRepository
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func newPausingRepo(next ports.ClientRepository) *pausingRepo {
	return &pausingRepo{
		ClientRepository: next,
		loaded:           make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (p *pausingRepo) FindByID(ctx context.Context, id string, includeSensitive bool) (*domain.Client, error) {
	c, err := p.ClientRepository.FindByID(ctx, id, includeSensitive)
	p.once.Do(func() {
		close(p.loaded)
		<-p.release
	})
	return c, err
}

func TestCachedClientRepository_FillsOnMiss(t *testing.T) {
	mr, client := inMemoryRedis(t)
	repo := NewCachedClientRepository(seededStore(t), client, time.Minute, zerolog.Nop())

	if _, err := repo.FindByID(context.Background(), seededID, false); err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if !mr.Exists(repo.key(seededID)) {
		t.Fatalf("expected the row to be cached after a miss")
	}
}

func TestCachedClientRepository_ReadOverlappingWriteIsNotCached(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, repo *CachedClientRepository) error
		check func(t *testing.T, got *domain.Client, err error)
	}{
		{
			name: "soft delete",
			write: func(ctx context.Context, repo *CachedClientRepository) error {
				return repo.SoftDelete(ctx, seededID)
			},
			check: func(t *testing.T, _ *domain.Client, err error) {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Fatalf("expected deleted client to stay invisible, got %v", err)
				}
			},
		},
		{
			name: "update",
			write: func(ctx context.Context, repo *CachedClientRepository) error {
				phone := "+56987654321"
				_, err := repo.Update(ctx, seededID, domain.ClientPatch{Phone: &phone})
				return err
			},
			check: func(t *testing.T, got *domain.Client, err error) {
				if err != nil {
					t.Fatalf("FindByID returned error: %v", err)
				}
				if got.Phone != "+56987654321" {
					t.Fatalf("expected the updated phone, got %q", got.Phone)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mr, client := inMemoryRedis(t)
			paused := newPausingRepo(seededStore(t))
			repo := NewCachedClientRepository(paused, client, time.Minute, zerolog.Nop())

			done := make(chan error, 1)
			go func() {
				_, err := repo.FindByID(ctx, seededID, false)
				done <- err
			}()

			<-paused.loaded
			if err := tt.write(ctx, repo); err != nil {
				t.Fatalf("write returned error: %v", err)
			}
			close(paused.release)
			if err := <-done; err != nil {
				t.Fatalf("overlapping read returned error: %v", err)
			}

			if mr.Exists(repo.key(seededID)) {
				t.Fatalf("stale row was written back to the cache")
			}
			got, err := repo.FindByID(ctx, seededID, false)
			tt.check(t, got, err)
		})
	}
}
