// Package cache provides the process-scoped cache registry used by autosuggest.
//
// Subsystems create strongly-typed caches through a Registry they are handed
// (spec resolution, script output memoization, ...). The registry never looks
// inside the caches; it only knows how to list them and how to empty all of
// them at once, which is what a shell session reset needs.
package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// entry stores a cached value with an optional expiry
type entry[V any] struct {
	value   V
	expires time.Time // zero means no expiry
}

// Cache is a concurrency-safe key/value mapping registered in a Registry
type Cache[K comparable, V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[K]entry[V]
	now     func() time.Time
}

func newCache[K comparable, V any](name string) *Cache[K, V] {
	return &Cache[K, V]{
		name:    name,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// Name returns the label the cache was registered under
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Get returns the value for key, ignoring expired entries
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value without expiry
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores a value that reads as absent once ttl has elapsed.
// A non-positive ttl means the entry never expires.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// Delete removes a single entry
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of live entries
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

// Keys returns the keys of all live entries, in no particular order
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, len(c.entries))
	for k, e := range c.entries {
		if !c.expired(e) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Clear empties the cache by swapping in a fresh map
func (c *Cache[K, V]) Clear() {
	fresh := make(map[K]entry[V])

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = fresh
}

// keyStrings renders live keys for diagnostics, sorted
func (c *Cache[K, V]) keyStrings() []string {
	keys := c.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprint(k))
	}
	sort.Strings(out)
	return out
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}
