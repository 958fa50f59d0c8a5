package summary

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// RedisCache shares generated summaries across processes. Entries carry
// a TTL so hashes of idea sets that never come back age out on their
// own.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wires the cache to a redis client. A non-positive ttl
// falls back to one day.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("summary cache get: %w", err)
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, text string) error {
	if err := c.client.Set(ctx, key, text, c.ttl).Err(); err != nil {
		return fmt.Errorf("summary cache set: %w", err)
	}
	return nil
}
