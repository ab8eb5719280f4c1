package driving

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// AnnotationService manages human relevance judgements and queries.
type AnnotationService interface {
	// Annotate records a judgement for a (query, chunk) pair.
	Annotate(ctx context.Context, queryID, chunkID string, relevance domain.Relevance) error

	// Remove deletes a judgement.
	Remove(ctx context.Context, queryID, chunkID string) error

	// List returns all judgements, or those of one query when queryID is non-empty.
	List(ctx context.Context, queryID string) (domain.AnnotationSet, error)

	// Import merges judgements from an annotations file.
	// Returns the number of annotations imported.
	Import(ctx context.Context, path string) (int, error)

	// Export writes all judgements to an annotations file.
	Export(ctx context.Context, path string) error

	// AddQuery stores an evaluation query.
	AddQuery(ctx context.Context, q domain.Query) error

	// Queries returns the stored evaluation queries.
	Queries(ctx context.Context) ([]domain.Query, error)
}
