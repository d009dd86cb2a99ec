package cache

import (
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// registered is the type-erased view the registry keeps of each cache
type registered interface {
	Name() string
	Len() int
	Clear()
	keyStrings() []string
}

// Registry tracks every cache created for a session
type Registry struct {
	mu     sync.RWMutex
	caches *orderedmap.OrderedMap[string, registered]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		caches: orderedmap.New[string, registered](),
	}
}

// Create allocates a new empty cache, registers it under name and returns it.
// A name already in use gets a numeric suffix ("scripts#2").
func Create[K comparable, V any](r *Registry, name string) *Cache[K, V] {
	r.mu.Lock()
	defer r.mu.Unlock()

	unique := name
	for i := 2; ; i++ {
		if _, taken := r.caches.Get(unique); !taken {
			break
		}
		unique = fmt.Sprintf("%s#%d", name, i)
	}

	c := newCache[K, V](unique)
	r.caches.Set(unique, c)
	return c
}

// ResetAll empties every registered cache; registry membership is unchanged
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for pair := r.caches.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Clear()
	}
}

// Len returns the number of registered caches
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caches.Len()
}
