package source

import (
	"sync"
	"time"
)

// Clock returns the current time. Injectable so cache expiry is testable.
type Clock func() time.Time

type cacheEntry struct {
	value  []byte
	expiry time.Time
}

// Cache is a time-bounded response cache keyed by request URL. It is owned by
// whoever builds the sources and passed into each adapter explicitly — not a
// package-level singleton.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     Clock
	entries map[string]cacheEntry
}

func NewCache(ttl time.Duration, now Clock) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiry) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value []byte) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiry: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Purge drops expired entries. Called opportunistically by long-running
// owners; correctness does not depend on it.
func (c *Cache) Purge() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.After(e.expiry) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
