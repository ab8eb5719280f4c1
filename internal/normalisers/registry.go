package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry keeps parsers sorted by descending priority.
// Parsers with equal priority keep registration order.
type Registry struct {
	mu      sync.RWMutex
	parsers []driven.Parser
}

// NewRegistry creates a registry holding the given parsers.
func NewRegistry(parsers ...driven.Parser) *Registry {
	r := &Registry{}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// Register adds a parser.
func (r *Registry) Register(parser driven.Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers = append(r.parsers, parser)
	sort.SliceStable(r.parsers, func(i, j int) bool {
		return r.parsers[i].Priority() > r.parsers[j].Priority()
	})
}

// Parsers returns the registered parsers in selection order.
func (r *Registry) Parsers() []driven.Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]driven.Parser(nil), r.parsers...)
}

// CanParse reports whether any parser handles the file.
func (r *Registry) CanParse(file domain.FileDescriptor) bool {
	return r.find(file) != nil
}

// Parse delegates to the first capable parser.
func (r *Registry) Parse(ctx context.Context, file domain.FileDescriptor) (*domain.ParsedDocument, error) {
	parser := r.find(file)
	if parser == nil {
		return nil, fmt.Errorf("%w: no parser for %s", domain.ErrUnsupportedFormat, file.Path)
	}
	return parser.Parse(ctx, file)
}

func (r *Registry) find(file domain.FileDescriptor) driven.Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.parsers {
		if p.CanParse(file) {
			return p
		}
	}
	return nil
}
