package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache is an in-memory TTL byte cache implementing app.Cache. Expired
// entries are dropped lazily on read.
type Cache struct {
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewCache() *Cache {
	return &Cache{
		clock:   time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// NewCacheWithClock is test-only for deterministic expiry.
func NewCacheWithClock(clock func() time.Time) *Cache {
	c := NewCache()
	c.clock = clock
	return c
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.After(c.clock()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.clock().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) DeleteByPrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
