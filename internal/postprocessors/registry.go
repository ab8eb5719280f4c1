package postprocessors

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// BuilderFunc creates a ChunkStrategy from a tokenizer and generic config.
// Config is a map of strategy-specific settings parsed from user config.
type BuilderFunc func(tokenizer driven.Tokenizer, cfg map[string]any) (driven.ChunkStrategy, error)

// Registry maps strategy names to their builders.
// It allows dynamic construction of chunkers from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a strategy builder to the registry.
// Name should be unique and match the strategy's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a strategy by name with the given config.
// Returns error if the strategy name is not registered.
func (r *Registry) Build(name string, tokenizer driven.Tokenizer, cfg map[string]any) (driven.ChunkStrategy, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown chunk strategy %q: %w", name, domain.ErrInvalidConfiguration)
	}
	return builder(tokenizer, cfg)
}

// Has returns true if a strategy with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
