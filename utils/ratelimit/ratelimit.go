// Package ratelimit guards the model API quota. Classification and
// summarization both burn requests from the same free tier, so every
// backend call site checks a limiter before going out.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is the check every model call runs before spending quota.
type Limiter interface {
	// Allow consumes one token from the key's bucket. It returns false
	// when the limit for the window is already spent.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// AllowN consumes n tokens at once.
	AllowN(ctx context.Context, key string, n int, limit int, window time.Duration) (bool, error)

	// Reset clears the counters for a key.
	Reset(ctx context.Context, key string) error

	// GetRemaining reports how many tokens the current window still holds.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// TokenBucketLimiter counts tokens in redis, so several processes can
// share one quota. Counters live in per-window buckets created by
// INCRBY inside a pipeline, which keeps the check atomic.
type TokenBucketLimiter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	fallback    bool // allow calls when redis is unreachable
}

// NewTokenBucketLimiter wires a limiter to a redis client. With fallback
// set, a redis outage lets calls through instead of blocking every model
// call on the side channel.
func NewTokenBucketLimiter(redisClient *redis.Client, logger *zap.Logger, fallback bool) *TokenBucketLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenBucketLimiter{
		redisClient: redisClient,
		logger:      logger,
		fallback:    fallback,
	}
}

func (l *TokenBucketLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.AllowN(ctx, key, 1, limit, window)
}

func (l *TokenBucketLimiter) AllowN(ctx context.Context, key string, n int, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	bk := bucketKey(key, now, window)

	pipe := l.redisClient.Pipeline()
	incrCmd := pipe.IncrBy(ctx, bk, int64(n))
	// One second of slack so the bucket outlives its window.
	pipe.Expire(ctx, bk, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		if l.fallback {
			l.logger.Warn("rate limit check failed, allowing call",
				zap.String("key", key),
				zap.Error(err),
			)
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
			zap.Duration("window", window),
		)
	}
	return allowed, nil
}

// Reset drops the key's buckets for the current and previous windows at
// the granularities in use.
func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	now := time.Now()
	windows := []time.Duration{time.Minute, time.Hour, 24 * time.Hour}

	var keys []string
	for _, window := range windows {
		keys = append(keys, bucketKey(key, now, window))
		keys = append(keys, bucketKey(key, now.Add(-window), window))
	}

	if err := l.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("reset rate limit for key %s: %w", key, err)
	}
	l.logger.Info("rate limit reset", zap.String("key", key))
	return nil
}

func (l *TokenBucketLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	count, err := l.redisClient.Get(ctx, bucketKey(key, time.Now(), window)).Int64()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, fmt.Errorf("get remaining tokens: %w", err)
	}
	if remaining := limit - int(count); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// LocalLimiter keeps the counters in process memory for runs without
// redis. Counts do not survive a restart, which is fine for a quota
// protecting a per-minute free tier.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]localBucket
}

type localBucket struct {
	count   int
	expires time.Time
}

// NewLocalLimiter creates an empty in-memory limiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{buckets: make(map[string]localBucket)}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.AllowN(ctx, key, 1, limit, window)
}

func (l *LocalLimiter) AllowN(_ context.Context, key string, n int, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	bk := bucketKey(key, now, window)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(now)

	b := l.buckets[bk]
	if b.expires.IsZero() {
		b.expires = now.Add(window + time.Second)
	}
	b.count += n
	l.buckets[bk] = b
	return b.count <= limit, nil
}

func (l *LocalLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := "ratelimit:" + key + ":"
	for bk := range l.buckets {
		if strings.HasPrefix(bk, prefix) {
			delete(l.buckets, bk)
		}
	}
	return nil
}

func (l *LocalLimiter) GetRemaining(_ context.Context, key string, limit int, window time.Duration) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.buckets[bucketKey(key, time.Now(), window)]
	if remaining := limit - b.count; remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

func (l *LocalLimiter) prune(now time.Time) {
	for bk, b := range l.buckets {
		if !b.expires.IsZero() && b.expires.Before(now) {
			delete(l.buckets, bk)
		}
	}
}

// bucketKey derives the storage key for a window: the coarser the
// window, the coarser the time bucket, so keys stay bounded.
func bucketKey(key string, now time.Time, window time.Duration) string {
	var bucketTime int64
	switch {
	case window <= time.Minute:
		bucketTime = now.Unix() / max(int64(window.Seconds()), 1)
	case window <= time.Hour:
		bucketTime = now.Unix() / 60 / int64(window.Minutes())
	default:
		bucketTime = now.Unix() / 3600 / int64(window.Hours())
	}
	return fmt.Sprintf("ratelimit:%s:%d", key, bucketTime)
}

// Config caps the model calls per operation; zero values fall back to
// the defaults in RuleFor.
type Config struct {
	ClassifyPerMinute  int
	SummarizePerMinute int
}

// Rule pairs a limit with its window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Operations with their own quota rule.
const (
	OpClassify  = "classify"
	OpSummarize = "summarize"
)

// RuleFor returns the rule guarding one model operation. Unknown
// operations share a conservative default.
func RuleFor(op string, cfg *Config) Rule {
	switch {
	case op == OpClassify && cfg.ClassifyPerMinute > 0:
		return Rule{Limit: cfg.ClassifyPerMinute, Window: time.Minute}
	case op == OpSummarize && cfg.SummarizePerMinute > 0:
		return Rule{Limit: cfg.SummarizePerMinute, Window: time.Minute}
	default:
		return Rule{Limit: 15, Window: time.Minute}
	}
}
