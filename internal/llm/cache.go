package llm

import (
	"context"
	"sync"
	"time"

	"github.com/shelfsync/shelfsync/internal/model"
)

// cacheEntry represents a cached prediction result.
type cacheEntry struct {
	expiry  time.Time
	queries []model.PredictedQuery
}

// MemoryCache provides thread-safe in-process caching of predicted queries.
// It implements service.PredictionCache and is the default when no
// persistent cache is configured.
type MemoryCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// NewMemoryCache creates a new cache with the specified TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl == 0 {
		ttl = 15 * time.Minute // Default TTL
	}

	cache := &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	// Start cleanup goroutine
	go cache.cleanup()

	return cache
}

// Get retrieves predictions from the cache if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]model.PredictedQuery, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return nil, false, nil
	}

	return entry.queries, true, nil
}

// Set stores predictions in the cache.
func (c *MemoryCache) Set(_ context.Context, key string, queries []model.PredictedQuery) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		queries: queries,
		expiry:  time.Now().Add(c.ttl),
	}

	return nil
}

// cleanup periodically removes expired entries.
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	close(c.stopCh)
	return nil
}
