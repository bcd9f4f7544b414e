package quote

import "sync"

// Cache is a per-venue mapping from instrument key to the latest Quote.
// The concurrency contract (spec §4.B/§5) is: a single writer per venue (the
// owning stream client) and any number of readers. Writers hold the lock for
// the whole map during a field-merge; readers always get an independent
// point-in-time copy so downstream iteration never blocks a writer.
type Cache struct {
	mu   sync.RWMutex
	data map[string]Quote
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{data: make(map[string]Quote)}
}

// Update field-merges delta into the quote stored under key, creating the
// entry on first observation. Quotes are never deleted.
func (c *Cache) Update(key string, delta Delta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = c.data[key].merge(delta)
}

// Get returns the quote for key and whether it has ever been observed.
func (c *Cache) Get(key string) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.data[key]
	return q, ok
}

// Snapshot returns a deep copy of the current instrument map. Quote is a
// value type so a shallow map copy is already a deep copy.
func (c *Cache) Snapshot() map[string]Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Quote, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// Len reports the number of instruments observed so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
