// Package cache holds rendered responses keyed by canonical URL for the
// lifetime of one process. No eviction and no TTL: entries only exist to
// spare repeat transactions within a single run.
package cache

import "sync"

// Cache maps canonical URL strings to rendered display text.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the rendered text for key, if present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[key]
	return text, ok
}

// Put stores the rendered text for key, overwriting any previous entry.
func (c *Cache) Put(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = text
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
