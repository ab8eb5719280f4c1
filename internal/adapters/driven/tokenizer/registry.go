package tokenizer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// BuilderFunc creates a tokenizer.
type BuilderFunc func() (driven.Tokenizer, error)

// Registry maps tokenizer names to builders and caches built tokenizers.
type Registry struct {
	mu       sync.Mutex
	builders map[string]BuilderFunc
	built    map[string]driven.Tokenizer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
		built:    make(map[string]driven.Tokenizer),
	}
}

// DefaultRegistry returns a registry with the built-in tokenizers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RunesName, func() (driven.Tokenizer, error) { return NewRunes(), nil })
	for _, name := range []string{"cl100k_base", "o200k_base", "p50k_base", "r50k_base"} {
		r.Register(name, func() (driven.Tokenizer, error) {
			t, err := NewTiktoken(name)
			if err != nil {
				return nil, err
			}
			return t, nil
		})
	}
	return r
}

// Register adds a builder under a name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
	delete(r.built, name)
}

// Get returns the named tokenizer, building it on first use.
func (r *Registry) Get(name string) (driven.Tokenizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.built[name]; ok {
		return t, nil
	}

	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown tokenizer %q: %w", name, domain.ErrInvalidConfiguration)
	}

	t, err := builder()
	if err != nil {
		return nil, err
	}
	r.built[name] = t
	return t, nil
}

// Names returns the registered tokenizer names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
