package clean

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/district-etl/internal/model"
)

// Cleaner turns one raw source into a cleaned table.
type Cleaner interface {
	// Name returns the source name (e.g., "vote").
	Name() string

	// Clean normalizes raw. It never mutates raw.
	Clean(raw *model.Raw) (*Result, error)
}

type cleanerFunc struct {
	name string
	fn   func(*model.Raw) (*Result, error)
}

func (c cleanerFunc) Name() string                          { return c.name }
func (c cleanerFunc) Clean(raw *model.Raw) (*Result, error) { return c.fn(raw) }

// Registry maps source names to their cleaners.
type Registry struct {
	cleaners map[string]Cleaner
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry with the four district sources.
func NewRegistry(candidates Candidates) *Registry {
	r := &Registry{cleaners: make(map[string]Cleaner)}

	r.Register(cleanerFunc{SourceVote, func(raw *model.Raw) (*Result, error) {
		return CleanVote(raw, candidates)
	}})
	r.Register(cleanerFunc{SourcePopulation, CleanPopulation})
	r.Register(cleanerFunc{SourceRevenue, CleanRevenue})
	r.Register(cleanerFunc{SourceEducation, CleanEducation})

	return r
}

// Register adds a cleaner to the registry.
func (r *Registry) Register(c Cleaner) {
	name := c.Name()
	if _, ok := r.cleaners[name]; !ok {
		r.order = append(r.order, name)
	}
	r.cleaners[name] = c
}

// Get returns a cleaner by source name.
func (r *Registry) Get(name string) (Cleaner, error) {
	c, ok := r.cleaners[name]
	if !ok {
		return nil, eris.Errorf("clean: unknown source %q", name)
	}
	return c, nil
}

// All returns every cleaner in registration order.
func (r *Registry) All() []Cleaner {
	out := make([]Cleaner, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.cleaners[name])
	}
	return out
}

// AllNames returns all registered source names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
