package adapter

import (
	"context"
	"fmt"

	"github.com/monover/monover/domain"
)

// Registry manages all registered build-system adapters.
type Registry struct {
	adapters map[string]domain.Adapter
	order    []string
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]domain.Adapter),
	}
}

// Register adds an adapter under its own name. Registration order is
// preserved and decides auto-detection precedence.
func (r *Registry) Register(a domain.Adapter) {
	if _, exists := r.adapters[a.Name()]; !exists {
		r.order = append(r.order, a.Name())
	}
	r.adapters[a.Name()] = a
}

// Get returns the adapter registered under the given name.
func (r *Registry) Get(name string) (domain.Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("unknown adapter type: %q", name)
	}
	return a, nil
}

// Detect returns the first registered adapter that recognizes the
// directory.
func (r *Registry) Detect(ctx context.Context, dir string) (domain.Adapter, error) {
	for _, name := range r.order {
		if a := r.adapters[name]; a.Detect(ctx, dir) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no adapter recognizes %q", dir)
}

// Names returns the registered adapter names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
