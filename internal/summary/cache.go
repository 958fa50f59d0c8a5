package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/twmb/murmur3"

	"github.com/Gopher0727/Ideario/internal/resolve"
)

// Cache stores generated summaries by content key. There is no explicit
// invalidation: a container whose ideas changed hashes to a different
// key, and abandoned entries age out (or stay, for the in-memory case,
// bounded by how many distinct idea sets a session produces).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
}

// ContentKey hashes the container name and its normalized idea texts
// into a cache key. Idea order is irrelevant; accents and case are
// folded the same way entity resolution folds them. The container name
// participates so two containers with the same ideas never trade
// summaries that mention each other's name.
func ContentKey(container string, ideas []string) string {
	norm := make([]string, len(ideas))
	for i, idea := range ideas {
		norm[i] = resolve.Normalize(idea)
	}
	sort.Strings(norm)

	var b strings.Builder
	b.WriteString(resolve.Normalize(container))
	for _, n := range norm {
		b.WriteByte(0)
		b.WriteString(n)
	}
	h1, h2 := murmur3.Sum128([]byte(b.String()))
	return fmt.Sprintf("summary:%016x%016x", h1, h2)
}

// MemoryCache is a process-local Cache for runs without redis.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[key]
	return text, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = text
	return nil
}
