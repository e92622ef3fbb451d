package memory

import (
	"context"
	"sync"
	"time"

	"github.com/imartinde/senderos/internal/pkg/metrics"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache implements ports.CacheService in process memory. It is the
// fallback when no Valkey address is configured and is also used by
// tests. Expired entries are dropped lazily on read.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get retrieves a value by key. A miss or expired entry returns (nil, nil).
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		metrics.CacheMisses.WithLabelValues("get").Inc()
		return nil, nil
	}

	metrics.CacheHits.WithLabelValues("get").Inc()
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a value with a TTL in seconds.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	v := make([]byte, len(value))
	copy(v, value)

	c.mu.Lock()
	c.entries[key] = entry{value: v, expiresAt: time.Now().Add(time.Duration(ttlSeconds) * time.Second)}
	c.mu.Unlock()
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
