package analytics

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes pure analytics computations. Keys combine the dataset
// content fingerprint with the operation name and its parameters, so results
// for one upload can never leak into another. Invalidation is wholesale:
// replacing the dataset clears everything.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
	flight  singleflight.Group
}

// NewCache creates an empty analytics cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]interface{})}
}

// Key builds a cache key from the dataset fingerprint, operation name and
// parameters.
func Key(fingerprint, operation string, params ...interface{}) string {
	return fmt.Sprintf("%s|%s|%v", fingerprint, operation, params)
}

// Do returns the memoized result for key, computing it at most once even
// under concurrent identical requests.
func (c *Cache) Do(key string, compute func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err, _ := c.flight.Do(key, func() (interface{}, error) {
		value, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = value
		c.mu.Unlock()
		return value, nil
	})
	return result, err
}

// Invalidate drops every cached entry. Called whenever a new upload replaces
// the canonical table; there is no partial invalidation.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]interface{})
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
