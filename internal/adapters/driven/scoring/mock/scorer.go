// Package mock provides a deterministic scorer for tests and offline runs.
package mock

import (
	"context"
	"hash/fnv"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.Scorer = (*Scorer)(nil)

// Name is the scorer name reported in logs and reports.
const Name = "mock"

// Score range bounds.
const (
	MinScore = 0.1
	MaxScore = 0.9
)

// Scorer hashes (query, chunk id, citation) into a score in [MinScore, MaxScore).
// Scores are stable across processes and platforms.
type Scorer struct{}

// New creates a mock scorer.
func New() *Scorer {
	return &Scorer{}
}

// Name returns the scorer name.
func (s *Scorer) Name() string {
	return Name
}

// ScoreBatch returns one score per chunk in input order.
func (s *Scorer) ScoreBatch(ctx context.Context, query string, chunks []domain.Chunk) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]float64, len(chunks))
	for i, c := range chunks {
		scores[i] = Score(query, c)
	}
	return scores, nil
}

// Score computes the mock score of one chunk.
func Score(query string, c domain.Chunk) float64 {
	h := fnv.New64a()
	h.Write([]byte(query + "|" + c.ID + "|" + c.Citation))
	bucket := h.Sum64() % 1000
	return float64(bucket)/1000.0*(MaxScore-MinScore) + MinScore
}

// Ping always succeeds.
func (s *Scorer) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *Scorer) Close() error {
	return nil
}
