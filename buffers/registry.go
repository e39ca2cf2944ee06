package buffers

import (
	"reflect"
	"slices"
	"sync"
)

// Registry owns one Store per element type. Stores are created on first
// use and live as long as the registry.
type Registry struct {
	stores map[reflect.Type]*Store
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[reflect.Type]*Store)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry. It is created on first
// call; managers built without an explicit registry share it.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Store returns the catalog for elem, creating it with the seed if needed.
func (r *Registry) Store(elem reflect.Type) *Store {
	r.mu.RLock()
	s, ok := r.stores[elem]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[elem]; ok {
		return s
	}
	s = newStore(elem)
	r.stores[elem] = s
	return s
}

// Lookup returns the catalog for elem without creating it.
func (r *Registry) Lookup(elem reflect.Type) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[elem]
	return s, ok
}

// Types returns the element types with a catalog, ordered by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	out := make([]reflect.Type, 0, len(r.stores))
	for t := range r.stores {
		out = append(out, t)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b reflect.Type) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	return out
}

// StoreFor returns the catalog for T in r, or in the default registry when
// r is nil.
func StoreFor[T any](r *Registry) *Store {
	if r == nil {
		r = DefaultRegistry()
	}
	return r.Store(reflect.TypeFor[T]())
}
