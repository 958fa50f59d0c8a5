package summary

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, ttl), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := setupRedisCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "summary:absent")
	require.NoError(t, err)
	assert.False(t, ok)

	key := ContentKey("compras", []string{"pan", "leche"})
	require.NoError(t, cache.Set(ctx, key, "dos cosas por comprar"))

	text, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dos cosas por comprar", text)
}

func TestRedisCacheExpiry(t *testing.T) {
	cache, mr := setupRedisCache(t, time.Minute)
	ctx := context.Background()

	key := ContentKey("viajes", []string{"vuelo a roma"})
	require.NoError(t, cache.Set(ctx, key, "un viaje en mente"))

	mr.FastForward(time.Minute + time.Second)

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "entry should age out with the TTL")
}
