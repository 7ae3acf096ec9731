package search

import (
	"fmt"
	"sync"

	"github.com/lookatitude/omnisearch/schema"
)

// Registry is an identity-keyed live set of constructed providers. It is the
// read-mostly component bootstrap populates once; after initialization reads
// vastly outnumber writes.
type Registry struct {
	mu        sync.RWMutex
	providers map[schema.EngineId]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[schema.EngineId]Provider)}
}

// Register adds provider under its own ID. It rejects duplicate ids to
// preserve the invariant that engine ids are globally unique.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.ID()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("search: provider %q already registered", id)
	}
	r.providers[id] = p
	return nil
}

// Get returns the provider registered under id, if any.
func (r *Registry) Get(id schema.EngineId) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// Has reports whether a provider is registered under id.
func (r *Registry) Has(id schema.EngineId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[id]
	return ok
}

// List returns every registered provider in no particular order.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}
