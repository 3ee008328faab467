// Package registry provides a concurrency-safe name registry.
//
// It backs lookups that are populated once and read on every evaluation,
// such as the type names resolved by T(...) references, so reads take a
// shared lock only.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps names to values.
// The zero value is not usable; create one with New.
type Registry[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	frozen  bool
}

// New creates an empty registry.
func New[V any]() *Registry[V] {
	return &Registry[V]{
		entries: make(map[string]V),
	}
}

// Register adds or replaces the value for name.
// It fails once the registry has been frozen or when name is empty.
func (r *Registry[V]) Register(name string, value V) error {
	if name == "" {
		return fmt.Errorf("registry: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("registry: frozen, cannot register %q", name)
	}
	r.entries[name] = value
	return nil
}

// RegisterAll adds every entry, stopping at the first failure.
func (r *Registry[V]) RegisterAll(entries map[string]V) error {
	for name, v := range entries {
		if err := r.Register(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the value for name and whether it exists.
func (r *Registry[V]) Lookup(name string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// Has reports whether name is registered.
func (r *Registry[V]) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Remove deletes name. Removing an unknown name is a no-op.
func (r *Registry[V]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("registry: frozen, cannot remove %q", name)
	}
	delete(r.entries, name)
	return nil
}

// Freeze rejects further changes. Lookups keep working.
func (r *Registry[V]) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Names returns the registered names in sorted order.
func (r *Registry[V]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clone returns an unfrozen copy that can be extended independently.
func (r *Registry[V]) Clone() *Registry[V] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry[V]{entries: make(map[string]V, len(r.entries))}
	for k, v := range r.entries {
		c.entries[k] = v
	}
	return c
}
