package cart

import (
	"context"
	"sync"
)

// Registry owns one Store per browser session.
type Registry struct {
	deps Deps

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(d Deps) *Registry {
	return &Registry{deps: d, stores: make(map[string]*Store)}
}

// Get returns the store for key, creating an unbound one on first use.
func (r *Registry) Get(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[key]
	if !ok {
		s = NewStore(key, r.deps)
		r.stores[key] = s
	}
	return s
}

// Anonymous returns a throwaway store for requests without a session. Every
// gated operation on it fails as unauthenticated.
func (r *Registry) Anonymous() *Store {
	return NewStore("", r.deps)
}

// Remove unbinds and forgets the store for key.
func (r *Registry) Remove(ctx context.Context, key string) {
	r.mu.Lock()
	s, ok := r.stores[key]
	delete(r.stores, key)
	r.mu.Unlock()

	if ok {
		s.Unbind(ctx)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
