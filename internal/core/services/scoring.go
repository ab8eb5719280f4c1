package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

// Ensure ScoringService implements the interface.
var _ driving.ScoringService = (*ScoringService)(nil)

// ScoringService sends chunks to the scorer in fixed-size batches.
// Batches are scored one at a time, in chunk order.
type ScoringService struct {
	scorer    driven.Scorer
	batchSize int
}

// NewScoringService creates a scoring service.
// A non-positive batch size uses domain.DefaultBatchSize.
func NewScoringService(scorer driven.Scorer, batchSize int) *ScoringService {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	return &ScoringService{scorer: scorer, batchSize: batchSize}
}

// Score returns one scored chunk per input chunk, in input order.
func (s *ScoringService) Score(ctx context.Context, query string, chunks []domain.Chunk) ([]domain.ScoredChunk, *domain.ScoreReport, error) {
	return s.ScoreStream(ctx, query, chunks, nil)
}

// ScoreStream scores chunks batch by batch, passing each batch to sink when set.
// A batch whose score count differs from its chunk count fails with
// domain.ErrScoringFailure.
func (s *ScoringService) ScoreStream(
	ctx context.Context,
	query string,
	chunks []domain.Chunk,
	sink driving.BatchSink,
) ([]domain.ScoredChunk, *domain.ScoreReport, error) {
	if s.scorer == nil {
		return nil, nil, fmt.Errorf("%w: no scorer configured", domain.ErrModelUnavailable)
	}

	report := &domain.ScoreReport{Query: query, Scorer: s.scorer.Name()}
	scored := make([]domain.ScoredChunk, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		scores, err := s.scorer.ScoreBatch(ctx, query, batch)
		if err != nil {
			return nil, report, fmt.Errorf("scoring batch %d: %w", report.Batches, err)
		}
		if len(scores) != len(batch) {
			return nil, report, fmt.Errorf("%w: batch %d: got %d scores for %d chunks",
				domain.ErrScoringFailure, report.Batches, len(scores), len(batch))
		}

		out := make([]domain.ScoredChunk, len(batch))
		for i, c := range batch {
			out[i] = domain.ScoredChunk{Chunk: c, Score: scores[i]}
		}

		if sink != nil {
			if err := sink(ctx, out); err != nil {
				return nil, report, fmt.Errorf("writing batch %d: %w", report.Batches, err)
			}
		}

		scored = append(scored, out...)
		report.Batches++
		report.Scored += len(out)
		logger.Debug("scored batch %d (%d/%d chunks)", report.Batches, report.Scored, len(chunks))
	}

	return scored, report, nil
}
