package domain

import (
	"errors"
	"fmt"
)

// ErrModuleNotFound is returned when a module id is not present in a
// ModuleSet. Ids coming from a set's own dependents lists should never hit
// this; when they do the input graph is stale and the edge is skipped with
// a warning rather than aborting the run.
var ErrModuleNotFound = errors.New("module not found")

// ModuleSet is a read-only store of the modules detected for one run. It
// preserves insertion order so that iteration (and therefore classification
// and output ordering) is deterministic.
type ModuleSet struct {
	byID  map[string]Module
	order []string
}

// NewModuleSet builds a set from detected modules. A duplicate id is an
// error: it means the adapter produced an inconsistent module list.
func NewModuleSet(modules []Module) (*ModuleSet, error) {
	set := &ModuleSet{
		byID:  make(map[string]Module, len(modules)),
		order: make([]string, 0, len(modules)),
	}
	for _, m := range modules {
		if _, exists := set.byID[m.ID]; exists {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		set.byID[m.ID] = m
		set.order = append(set.order, m.ID)
	}
	return set, nil
}

// Get returns the module with the given id.
func (s *ModuleSet) Get(id string) (Module, error) {
	m, ok := s.byID[id]
	if !ok {
		return Module{}, fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}
	return m, nil
}

// Has reports whether a module with the given id is registered.
func (s *ModuleSet) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// IDs returns all module ids in insertion order.
func (s *ModuleSet) IDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Len returns the number of registered modules.
func (s *ModuleSet) Len() int {
	return len(s.order)
}
