package report

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/attribution-engine/internal/pkg/logger"
)

// RedisCache implements Cache against Redis. Every failure is treated as a
// miss: a flaky cache degrades to direct computation, never to an error.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed report cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached payload for key, or a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("report cache get failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Set stores the payload for key with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Warn("report cache set failed", "key", key, "error", err)
	}
}
