package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds completion responses in process memory with TTL
// eviction. It serves repeat prompts within a single run; the disk layer
// covers later runs.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates an in-memory response cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the cached response for a prompt key
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a response under its prompt key with the given TTL
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete drops the response stored under key
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear drops every cached response
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
