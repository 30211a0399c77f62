// Package rediscache decorates repositories with a Redis read-through cache.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"conferencecentral/internal/domain"
)

const (
	identityKeyPrefix = "identity:email:"
	identityTTL       = 15 * time.Minute
)

// IdentityCache is a read-through cache over an IdentityRepository.
//
// Get serves from Redis when possible and falls back to the inner
// repository, populating the cache on a miss. GetConsistent always goes to
// the inner repository: the identity resolver depends on observing the
// current committed record right after a write, which a cached read cannot
// guarantee. Put writes through and invalidates the cached entry.
type IdentityCache struct {
	inner  domain.IdentityRepository
	client *redis.Client
	logger *slog.Logger
}

// NewIdentityCache wraps inner with a Redis cache. Cache failures degrade to
// the inner repository and are logged, never surfaced.
func NewIdentityCache(inner domain.IdentityRepository, client *redis.Client, logger *slog.Logger) *IdentityCache {
	return &IdentityCache{inner: inner, client: client, logger: logger}
}

func (c *IdentityCache) Put(ctx context.Context, email string) error {
	if err := c.inner.Put(ctx, email); err != nil {
		return err
	}
	if err := c.client.Del(ctx, identityKeyPrefix+email).Err(); err != nil {
		c.logger.WarnContext(ctx, "identity cache invalidation failed", "err", err)
	}
	return nil
}

func (c *IdentityCache) Get(ctx context.Context, email string) (*domain.Identity, error) {
	key := identityKeyPrefix + email
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		id := &domain.Identity{}
		if err := json.Unmarshal(payload, id); err == nil {
			return id, nil
		}
		// Unreadable entry; drop it and fall through to the source.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "identity cache read failed", "err", err)
	}

	id, err := c.inner.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(id); err == nil {
		if err := c.client.Set(ctx, key, payload, identityTTL).Err(); err != nil {
			c.logger.WarnContext(ctx, "identity cache write failed", "err", err)
		}
	}
	return id, nil
}

// GetConsistent bypasses the cache entirely.
func (c *IdentityCache) GetConsistent(ctx context.Context, email string) (*domain.Identity, error) {
	return c.inner.GetConsistent(ctx, email)
}
