package geo

import "sync"

// Cache holds the most recently captured coordinates for the session. The
// zero value is an empty cache.
//
// The mutex only makes reads and writes memory-safe. It does not serialize
// acquisitions: two workflows that both see an empty cache will both acquire,
// and the last Set wins.
type Cache struct {
	mu     sync.RWMutex
	coords Coordinates
	ok     bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached coordinates, if any.
func (c *Cache) Get() (Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coords, c.ok
}

// Set replaces the cached value.
func (c *Cache) Set(coords Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coords = coords
	c.ok = true
}
