package utils

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the shared listing cache. Cached pages are
// keyed per category and page, so a few hundred entries is plenty.
const DefaultCacheSize = 256

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache adds per-entry expiry on top of a bounded LRU. It backs the
// hot listings so popular pages skip the database between refreshes.
type TTLCache struct {
	entries *lru.Cache[string, cacheEntry]
}

// NewTTLCache returns a cache holding at most capacity entries. A
// non-positive capacity falls back to DefaultCacheSize.
func NewTTLCache(capacity int) *TTLCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	entries, _ := lru.New[string, cacheEntry](capacity)
	return &TTLCache{entries: entries}
}

var (
	sharedCache     *TTLCache
	sharedCacheOnce sync.Once
)

// GetCache returns the process-wide cache.
func GetCache() *TTLCache {
	sharedCacheOnce.Do(func() {
		sharedCache = NewTTLCache(DefaultCacheSize)
	})
	return sharedCache
}

// Set stores a value until ttl elapses.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.entries.Add(key, cacheEntry{value: value, expiresAt: time.Now().Add(ttl)})
}

// Get returns the cached value and whether it is still fresh. Expired
// entries are dropped on read.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Delete removes a key.
func (c *TTLCache) Delete(key string) {
	c.entries.Remove(key)
}
