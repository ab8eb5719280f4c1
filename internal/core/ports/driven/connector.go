package driven

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// Corpus walks a document collection and hashes the files it includes.
type Corpus interface {
	// Root returns the corpus root path.
	Root() string

	// Validate checks the root exists and is a directory.
	// Returns domain.ErrNotFound or domain.ErrInvalidInput otherwise.
	Validate(ctx context.Context) error

	// Ingest walks the corpus and returns one descriptor per included file.
	// Per-file read failures are counted in the report, not returned.
	// Order is traversal order and is only stable within one run.
	Ingest(ctx context.Context) ([]domain.FileDescriptor, domain.IngestReport, error)

	// Watch emits a change for each included file that is created,
	// modified or removed. The channel closes when ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close releases resources.
	Close() error
}
