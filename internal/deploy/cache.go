package deploy

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL bounds how long a classification result is trusted before the
// URL is re-evaluated.
const DefaultTTL = time.Hour

type cacheEntry struct {
	classification Type
	expiresAt      time.Time
}

// cache is the owned, mutex-guarded detection cache. Keys are normalized
// (trimmed, lower-cased) base URLs; entries expire after the configured
// TTL rather than only on explicit invalidation.
type cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newCache(ttl time.Duration, now func() time.Time) *cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// normalizeKey folds the URL onto its cache key.
func normalizeKey(baseURL string) string {
	return strings.ToLower(strings.TrimSpace(baseURL))
}

func (c *cache) get(key string) (Type, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return TypeUnknown, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return TypeUnknown, false
	}
	return entry.classification, true
}

// set inserts or refreshes an entry, restarting its TTL window.
func (c *cache) set(key string, classification Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		classification: classification,
		expiresAt:      c.now().Add(c.ttl),
	}
}

// clear drops every entry; used by maintenance operations.
func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
