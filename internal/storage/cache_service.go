package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService provides caching for assembled portfolio views. Summaries are
// always recomputed by the aggregation engine; only the composite view is
// cached, and every write for a client invalidates it.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// PortfolioKey generates the cache key for a client's portfolio view.
// Format: portfolio:<client-id>
func (c *CacheService) PortfolioKey(clientID string) string {
	return fmt.Sprintf("portfolio:%s", strings.ToLower(clientID))
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.redis.Set(ctx, key, data, c.ttl)
}

// Get retrieves a value from cache and deserializes it into dest.
// The boolean result reports whether the key was present.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// InvalidateClient drops the cached portfolio view for a client. Called after
// every create/update/delete of an owned record so reads never see stale data.
func (c *CacheService) InvalidateClient(ctx context.Context, clientID string) error {
	return c.Invalidate(ctx, c.PortfolioKey(clientID))
}
