// Package registry provides a small, thread-safe registry for reference data
// keyed by string identifiers. It backs the currency/country tables.
package registry

import "sync"

// Meta is the generic metadata record stored for a registered entity.
type Meta struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Active   bool              `json:"active"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Registry is a generic, thread-safe registry for managing reference entities.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]Meta
	order    []string
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{entities: make(map[string]Meta)}
}

// Register adds or updates an entity in the registry. Insertion order is
// preserved for listing.
func (r *Registry) Register(id string, meta Meta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meta.ID = id
	if _, exists := r.entities[id]; !exists {
		r.order = append(r.order, id)
	}
	r.entities[id] = meta
}

// Get returns entity metadata for the given ID. The second return value
// reports whether the entity is registered.
func (r *Registry) Get(id string) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.entities[id]
	return meta, ok
}

// IsRegistered checks if an entity ID is registered.
func (r *Registry) IsRegistered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entities[id]
	return ok
}

// List returns all registered entity IDs in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the total number of registered entities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}
