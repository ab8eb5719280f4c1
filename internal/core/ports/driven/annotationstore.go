package driven

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// AnnotationStore persists human relevance judgements.
// Load and Save are the only points where the full map crosses the boundary.
type AnnotationStore interface {
	// Load returns every annotation.
	// Returns an empty set if nothing has been stored yet.
	Load(ctx context.Context) (domain.AnnotationSet, error)

	// Save replaces the stored annotations with the given set.
	Save(ctx context.Context, set domain.AnnotationSet) error

	// Put records a single annotation.
	Put(ctx context.Context, queryID, chunkID string, a domain.Annotation) error

	// Delete removes a single annotation.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, queryID, chunkID string) error
}

// QueryStore persists evaluation queries.
type QueryStore interface {
	// SaveQuery stores or updates a query.
	SaveQuery(ctx context.Context, q domain.Query) error

	// ListQueries returns all queries ordered by ID.
	ListQueries(ctx context.Context) ([]domain.Query, error)

	// DeleteQuery removes a query.
	// Returns domain.ErrNotFound if it does not exist.
	DeleteQuery(ctx context.Context, id string) error
}

// AnnotationArchive reads and writes annotation files for import and export.
type AnnotationArchive interface {
	// ReadArchive reads annotations, and queries when the file carries them.
	ReadArchive(path string) (*domain.AnnotationExport, error)

	// WriteArchive writes a self-describing export file.
	WriteArchive(path string, doc domain.AnnotationExport) error
}
