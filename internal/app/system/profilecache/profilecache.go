// Package profilecache puts a Redis read-through cache in front of a profile
// resolver. Profiles are display data only, so a stale entry is harmless and
// any Redis failure falls back to the underlying resolver.
package profilecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	userstore "github.com/dalemusser/gatherhub/internal/app/store/users"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "gatherhub:profile:"

// DefaultTTL is used when New is given a non-positive ttl.
const DefaultTTL = 10 * time.Minute

// Cache implements userstore.Resolver.
type Cache struct {
	rdb  *redis.Client
	next userstore.Resolver
	ttl  time.Duration
	log  *zap.Logger
}

// New wraps next. A nil rdb disables caching and every call goes straight
// to next.
func New(rdb *redis.Client, next userstore.Resolver, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{rdb: rdb, next: next, ttl: ttl, log: log}
}

func key(userID string) string { return keyPrefix + userID }

// ResolveProfile returns the cached profile or resolves and caches it.
// Placeholder profiles for unknown users are not cached, so a user created
// later shows up on the next read.
func (c *Cache) ResolveProfile(ctx context.Context, userID string) (models.Profile, error) {
	if c.rdb == nil {
		return c.next.ResolveProfile(ctx, userID)
	}

	raw, err := c.rdb.Get(ctx, key(userID)).Result()
	switch {
	case err == nil:
		var p models.Profile
		if jerr := json.Unmarshal([]byte(raw), &p); jerr == nil {
			return p, nil
		}
		c.log.Warn("discarding corrupt profile cache entry", zap.String("user_id", userID))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("profile cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	p, err := c.next.ResolveProfile(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	if p == models.UnknownProfile(userID) {
		return p, nil
	}

	data, err := json.Marshal(p)
	if err == nil {
		err = c.rdb.Set(ctx, key(userID), data, c.ttl).Err()
	}
	if err != nil {
		c.log.Warn("profile cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return p, nil
}
