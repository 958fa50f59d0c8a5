// Package redis bootstraps the shared redis connection used for
// rate-limit buckets and the summary cache. Redis is optional: when the
// config disables it, callers fall back to in-memory implementations.
package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Gopher0727/Ideario/config"
)

// Client wraps the go-redis client with lifecycle helpers.
type Client struct {
	client *redis.Client
}

// NewClient connects and pings within a short timeout, so a missing
// instance fails at startup instead of on first use.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Client{client: rdb}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GetClient exposes the underlying go-redis client for packages that
// take one directly.
func (c *Client) GetClient() *redis.Client {
	return c.client
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
