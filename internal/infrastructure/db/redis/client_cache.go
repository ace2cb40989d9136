package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/censudex/clients-service/internal/api/metrics"
	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
)

const (
	defaultCacheTTL = 5 * time.Minute
	generationTTL   = 24 * time.Hour // outlives any in-flight fill
)

// errStaleFill aborts a fill whose generation moved while the row was loaded.
var errStaleFill = errors.New("cache fill raced with a write")

// CachedClientRepository is a read-through cache over another repository.
// Only the public projection of FindByID is cached; sensitive reads always
// go to the store. Writes evict the affected key. Redis failures degrade to
// the wrapped repository.
//
// Every write bumps a per-client generation counter before evicting. A fill
// only lands if the generation it observed before loading is still current,
// so a read that overlaps a write never caches the pre-write row.
//
// Key format: clients:v1:<id> (row), clients:v1:<id>:gen (generation)
type CachedClientRepository struct {
	ports.ClientRepository
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ ports.ClientRepository = (*CachedClientRepository)(nil)

func NewCachedClientRepository(next ports.ClientRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedClientRepository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedClientRepository{
		ClientRepository: next,
		client:           client,
		ttl:              ttl,
		logger:           logger.With().Str("component", "client_cache").Logger(),
	}
}

type cachedClient struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	BirthDate time.Time `json:"birthDate"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *CachedClientRepository) FindByID(ctx context.Context, id string, includeSensitive bool) (*domain.Client, error) {
	if includeSensitive {
		return c.ClientRepository.FindByID(ctx, id, true)
	}

	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	switch {
	case err == nil:
		var cached cachedClient
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return cached.toDomain(), nil
		}
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	default:
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("client_id", id).Msg("cache read failed")
	}

	gen, genErr := c.generation(ctx, id)
	client, err := c.ClientRepository.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		c.store(ctx, client, gen)
	}
	return client, nil
}

func (c *CachedClientRepository) Update(ctx context.Context, id string, p domain.ClientPatch) (*domain.Client, error) {
	client, err := c.ClientRepository.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, id)
	return client, nil
}

func (c *CachedClientRepository) UpdateCredential(ctx context.Context, id, passwordHash string) error {
	if err := c.ClientRepository.UpdateCredential(ctx, id, passwordHash); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *CachedClientRepository) SoftDelete(ctx context.Context, id string) error {
	if err := c.ClientRepository.SoftDelete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

// Ping reports the wrapped store's health; Redis is probed separately.
func (c *CachedClientRepository) Ping(ctx context.Context) error {
	if p, ok := c.ClientRepository.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *CachedClientRepository) generation(ctx context.Context, id string) (int64, error) {
	n, err := c.client.Get(ctx, c.generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("client_id", id).Msg("cache generation read failed")
	}
	return n, err
}

func (c *CachedClientRepository) store(ctx context.Context, client *domain.Client, gen int64) {
	raw, err := json.Marshal(fromDomain(client))
	if err != nil {
		c.logger.Warn().Err(err).Str("client_id", client.ID).Msg("cache encode failed")
		return
	}

	genKey := c.generationKey(client.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(client.ID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Str("client_id", client.ID).Msg("cache fill skipped after concurrent write")
	default:
		c.logger.Warn().Err(err).Str("client_id", client.ID).Msg("cache write failed")
	}
}

func (c *CachedClientRepository) evict(ctx context.Context, id string) {
	genKey := c.generationKey(id)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("client_id", id).Msg("cache eviction failed")
	}
}

func (c *CachedClientRepository) key(id string) string {
	return fmt.Sprintf("clients:v1:%s", id)
}

func (c *CachedClientRepository) generationKey(id string) string {
	return c.key(id) + ":gen"
}

func fromDomain(c *domain.Client) cachedClient {
	return cachedClient{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Username:  c.Username,
		BirthDate: c.BirthDate,
		Address:   c.Address,
		Phone:     c.Phone,
		Role:      string(c.Role),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (c cachedClient) toDomain() *domain.Client {
	return &domain.Client{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Username:  c.Username,
		BirthDate: c.BirthDate,
		Address:   c.Address,
		Phone:     c.Phone,
		Role:      domain.Role(c.Role),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
