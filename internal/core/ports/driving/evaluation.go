package driving

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// EvaluationService compares scorer output with human judgements.
type EvaluationService interface {
	// Evaluate evaluates every configured query and aggregates the results.
	Evaluate(ctx context.Context) (*domain.EvaluationReport, error)

	// EvaluateQuery evaluates a single query by ID.
	EvaluateQuery(ctx context.Context, queryID string) (*domain.EvaluationResult, error)

	// Markdown renders a report as a human-readable document.
	Markdown(report *domain.EvaluationReport) string
}

// CitationService resolves citations back to chunks.
type CitationService interface {
	// Resolve returns the persisted chunk carrying the citation.
	// Returns domain.ErrNotFound if no chunk matches.
	Resolve(ctx context.Context, citation string) (*domain.Chunk, error)
}
