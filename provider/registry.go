package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps backend names to factories and keeps the instances that
// were built from them.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry returns an empty registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory makes name available to Create. Registering the same
// name twice replaces the earlier factory.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create builds a new instance with the named factory. The instance is not
// cached; call Set to keep it.
func (r *Registry[T]) Create(name string, options map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider %q not registered (known: %s)", name, strings.Join(r.List(), ", "))
	}
	inst, err := factory(options)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("provider %q: %w", name, err)
	}
	return inst, nil
}

// Get returns the instance cached under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set caches inst under name.
func (r *Registry[T]) Set(name string, inst T) {
	r.mu.Lock()
	r.instances[name] = inst
	r.mu.Unlock()
}

// List returns the registered factory names in order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// CloseAll closes every cached instance that implements Closeable and
// empties the cache. All instances are attempted; the errors are joined.
func (r *Registry[T]) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	instances := r.instances
	r.instances = make(map[string]T)
	r.mu.Unlock()

	var errs []error
	for name, inst := range instances {
		c, ok := any(inst).(Closeable)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
