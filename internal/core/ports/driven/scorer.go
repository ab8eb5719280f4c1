package driven

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// Scorer assigns a relevance score to each chunk for a query.
// Implementations may include:
//   - A deterministic hash scorer for tests and offline runs
//   - An HTTP cross-encoder reranker service
type Scorer interface {
	// Name returns the scorer or model name.
	Name() string

	// ScoreBatch returns one score per chunk, in input order.
	// Fails with domain.ErrModelUnavailable or domain.ErrScoringFailure.
	ScoreBatch(ctx context.Context, query string, chunks []domain.Chunk) ([]float64, error)

	// Ping validates the scorer is usable by making a lightweight request.
	// Used when selecting between candidate scorers.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
