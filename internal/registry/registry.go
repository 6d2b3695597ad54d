// Package registry maps stable simulation identifiers to their descriptors.
// The table is built once at startup and read-only afterwards, so lookups are
// safe from any mount site without coordination.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cogcanvas/internal/core"
)

var (
	errEmptyID    = errors.New("descriptor id must not be empty")
	errNilFactory = errors.New("descriptor factory must not be nil")
)

// Descriptor associates a simulation id with its default presentation text
// and the factory that constructs instances of it.
type Descriptor struct {
	ID          string
	Title       string
	Description string
	New         core.Factory
}

// Registry is an immutable id → Descriptor table.
type Registry struct {
	byID map[string]Descriptor
}

// New builds a registry from the given descriptors. Duplicate or empty ids
// and nil factories are programming errors and are rejected up front.
func New(descriptors ...Descriptor) (*Registry, error) {
	byID := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if strings.TrimSpace(d.ID) == "" {
			return nil, fmt.Errorf("registry: %w", errEmptyID)
		}
		if d.New == nil {
			return nil, fmt.Errorf("registry: %q: %w", d.ID, errNilFactory)
		}
		if _, exists := byID[d.ID]; exists {
			return nil, fmt.Errorf("registry: duplicate descriptor id %q", d.ID)
		}
		byID[d.ID] = d
	}
	return &Registry{byID: byID}, nil
}

// MustNew is New for static descriptor sets assembled at startup.
func MustNew(descriptors ...Descriptor) *Registry {
	r, err := New(descriptors...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup resolves an id. A missing id is an expected content-authoring
// mistake, reported as ok=false rather than an error.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Len reports the number of registered descriptors.
func (r *Registry) Len() int { return len(r.byID) }

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
