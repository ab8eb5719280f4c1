// Package embedding provides a scorer that ranks chunks by embedding
// similarity to the query.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.Scorer = (*Scorer)(nil)

// Scorer embeds the query and each chunk and scores them by cosine
// similarity, mapped from [-1, 1] into [0, 1].
type Scorer struct {
	embedder driven.Embedder

	mu         sync.Mutex
	queryText  string
	queryVec   []float32
	queryKnown bool
}

// New creates a scorer over the given embedder.
func New(embedder driven.Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Name returns the scorer name including the embedding model.
func (s *Scorer) Name() string {
	return "embedding:" + s.embedder.ModelName()
}

// ScoreBatch returns one similarity score per chunk, in input order.
func (s *Scorer) ScoreBatch(ctx context.Context, query string, chunks []domain.Chunk) ([]float64, error) {
	if len(chunks) == 0 {
		return []float64{}, nil
	}

	qv, err := s.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrScoringFailure, len(vecs), len(chunks))
	}

	scores := make([]float64, len(chunks))
	for i, v := range vecs {
		cos, err := Cosine(qv, v)
		if err != nil {
			return nil, err
		}
		scores[i] = (cos + 1) / 2
	}
	return scores, nil
}

// queryVector embeds the query once and reuses it while the query is unchanged.
func (s *Scorer) queryVector(ctx context.Context, query string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queryKnown && s.queryText == query {
		return s.queryVec, nil
	}

	vecs, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: got %d embeddings for the query", domain.ErrScoringFailure, len(vecs))
	}

	s.queryText = query
	s.queryVec = vecs[0]
	s.queryKnown = true
	return s.queryVec, nil
}

// Ping checks the embedder is reachable.
func (s *Scorer) Ping(ctx context.Context) error {
	return s.embedder.Ping(ctx)
}

// Close releases the embedder.
func (s *Scorer) Close() error {
	return s.embedder.Close()
}

// Cosine returns the cosine similarity of a and b.
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d vs %d", domain.ErrScoringFailure, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, cos)), nil
}
