package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func chunks(n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{
			ID:       domain.ChunkID("abcdef0123456789", i),
			Citation: domain.NewCitation("abcdef0123456789", domain.MediaTypeText, i*10, i*10+10),
		}
	}
	return out
}

func TestScorer_ScoreBatch(t *testing.T) {
	s := New()
	input := chunks(50)

	scores, err := s.ScoreBatch(context.Background(), "what is provenance", input)
	require.NoError(t, err)
	require.Len(t, scores, len(input))

	for _, score := range scores {
		assert.GreaterOrEqual(t, score, MinScore)
		assert.Less(t, score, MaxScore)
	}
}

func TestScorer_Deterministic(t *testing.T) {
	s := New()
	input := chunks(10)

	first, err := s.ScoreBatch(context.Background(), "q", input)
	require.NoError(t, err)
	second, err := s.ScoreBatch(context.Background(), "q", input)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Batch boundaries do not change scores.
	tail, err := s.ScoreBatch(context.Background(), "q", input[5:])
	require.NoError(t, err)
	assert.Equal(t, first[5:], tail)
}

func TestScorer_DependsOnQuery(t *testing.T) {
	input := chunks(20)
	a, _ := New().ScoreBatch(context.Background(), "first query", input)
	b, _ := New().ScoreBatch(context.Background(), "second query", input)
	assert.NotEqual(t, a, b)
}

func TestScorer_Empty(t *testing.T) {
	scores, err := New().ScoreBatch(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScorer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().ScoreBatch(ctx, "q", chunks(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScorer_PingClose(t *testing.T) {
	s := New()
	assert.Equal(t, Name, s.Name())
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
