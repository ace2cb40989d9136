//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/censudex/clients-service/internal/core/domain"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestCachedClientRepository_Integration(t *testing.T) {
	client := startRedis(t)
	store := seededStore(t)
	repo := NewCachedClientRepository(store, client, time.Minute, zerolog.Nop())
	ctx := context.Background()
	id := "5b9a8f8e-2c1d-4d53-9b8e-4f0b2f5f1a10"

	first, err := repo.FindByID(ctx, id, false)
	require.NoError(t, err)

	n, err := client.Exists(ctx, repo.key(id)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "miss should populate the cache")

	cached, err := repo.FindByID(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, first.Email, cached.Email)
	assert.Empty(t, cached.PasswordHash)

	phone := "+56987654321"
	_, err = repo.Update(ctx, id, domain.ClientPatch{Phone: &phone})
	require.NoError(t, err)

	n, err = client.Exists(ctx, repo.key(id)).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "update should evict the cached entry")

	fresh, err := repo.FindByID(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, phone, fresh.Phone)

	require.NoError(t, repo.SoftDelete(ctx, id))
	_, err = repo.FindByID(ctx, id, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
