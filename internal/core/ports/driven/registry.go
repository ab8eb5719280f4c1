package driven

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// ParserRegistry selects the parser for a file.
// It keeps parsers in priority order and the first capable parser wins.
type ParserRegistry interface {
	// Parse parses the file with the first parser whose CanParse returns true.
	// Returns domain.ErrUnsupportedFormat when none does.
	Parse(ctx context.Context, file domain.FileDescriptor) (*domain.ParsedDocument, error)

	// Register adds a parser to the registry.
	Register(parser Parser)

	// CanParse reports whether any registered parser handles the file.
	CanParse(file domain.FileDescriptor) bool
}
