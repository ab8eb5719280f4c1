package driven

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// Parser converts a corpus file into normalised text.
// Each parser handles a fixed set of extensions (e.g. html, pdf).
type Parser interface {
	// Name returns the parser name for logging.
	Name() string

	// CanParse reports whether this parser handles the file.
	CanParse(file domain.FileDescriptor) bool

	// Priority returns the selection priority (higher = preferred).
	// Format-specific parsers should return 50-89.
	// Fallback parsers should return 1-9.
	Priority() int

	// Parse reads and normalises the file.
	// Fails with domain.ErrIOFailure, domain.ErrUnsupportedFormat or domain.ErrParseFailure.
	Parse(ctx context.Context, file domain.FileDescriptor) (*domain.ParsedDocument, error)
}
