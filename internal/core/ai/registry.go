package ai

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe name → prototype map. Prototypes are templates:
// Create hands out independent clones, so agents built from the same
// definitions never share runtime state.
type Registry[T Prototype[T]] struct {
	mu    sync.RWMutex
	kind  string
	items map[string]T
}

// NewRegistry returns an empty registry; kind is used in error messages.
func NewRegistry[T Prototype[T]](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, items: make(map[string]T)}
}

// Add registers item under its name.
func (r *Registry[T]) Add(item T) error {
	if isNil(item) {
		return fmt.Errorf("%s registry: %w", r.kind, ErrNilCollaborator)
	}
	name := item.Name()
	if name == "" {
		return fmt.Errorf("%s registry: %w", r.kind, ErrEmptyName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[name]; exists {
		return fmt.Errorf("%s registry: %q: %w", r.kind, name, ErrDuplicateName)
	}
	r.items[name] = item
	return nil
}

func (r *Registry[T]) Contains(name string) bool {
	r.mu.RLock()
	_, ok := r.items[name]
	r.mu.RUnlock()
	return ok
}

// Get returns the prototype itself. Mutating it affects future clones.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	item, ok := r.items[name]
	r.mu.RUnlock()
	return item, ok
}

// Create returns a fresh clone of the named prototype.
func (r *Registry[T]) Create(name string) (T, bool) {
	r.mu.RLock()
	item, ok := r.items[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	return item.Clone(), true
}

func (r *Registry[T]) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; !ok {
		return false
	}
	delete(r.items, name)
	return true
}

func (r *Registry[T]) Clear() {
	r.mu.Lock()
	r.items = make(map[string]T)
	r.mu.Unlock()
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
