package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// --- Mock implementations of driven ports ---

// mockScorer scores each chunk by its order and records batch sizes.
type mockScorer struct {
	mu      sync.Mutex
	batches []int
	err     error
	short   bool // return one score too few
}

func (m *mockScorer) Name() string { return "mock-test" }

func (m *mockScorer) ScoreBatch(_ context.Context, _ string, chunks []domain.Chunk) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.batches = append(m.batches, len(chunks))

	scores := make([]float64, len(chunks))
	for i, c := range chunks {
		scores[i] = float64(c.Order) / 100
	}
	if m.short && len(scores) > 0 {
		scores = scores[:len(scores)-1]
	}
	return scores, nil
}

func (m *mockScorer) Ping(context.Context) error { return nil }
func (m *mockScorer) Close() error               { return nil }

// mockChunkReader returns fixed chunks.
type mockChunkReader struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockChunkReader) ReadChunks(context.Context) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

// mockScoreReader returns fixed scored chunks.
type mockScoreReader struct {
	scored []domain.ScoredChunk
	err    error
}

func (m *mockScoreReader) ReadScores(context.Context) ([]domain.ScoredChunk, error) {
	return m.scored, m.err
}

// mockPacketWriter records written packets.
type mockPacketWriter struct {
	written map[string]domain.ContextPacket
	names   []string
	err     error
}

func (m *mockPacketWriter) WritePacket(_ context.Context, name string, p domain.ContextPacket) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.written == nil {
		m.written = make(map[string]domain.ContextPacket)
	}
	m.written[name] = p
	m.names = append(m.names, name)
	return "mem://" + name, nil
}

// mockArchive keeps one in-memory file per path.
type mockArchive struct {
	files map[string]domain.AnnotationExport
}

func (m *mockArchive) ReadArchive(path string) (*domain.AnnotationExport, error) {
	doc, ok := m.files[path]
	if !ok {
		return nil, errors.Join(domain.ErrIOFailure, errors.New("no such file"))
	}
	return &doc, nil
}

func (m *mockArchive) WriteArchive(path string, doc domain.AnnotationExport) error {
	if m.files == nil {
		m.files = make(map[string]domain.AnnotationExport)
	}
	m.files[path] = doc
	return nil
}

var (
	_ driven.Scorer            = (*mockScorer)(nil)
	_ driven.ChunkReader       = (*mockChunkReader)(nil)
	_ driven.ScoreReader       = (*mockScoreReader)(nil)
	_ driven.PacketWriter      = (*mockPacketWriter)(nil)
	_ driven.AnnotationArchive = (*mockArchive)(nil)
)

// orderedChunks builds n chunks of the given token size with orders 0..n-1.
func orderedChunks(n, tokens int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:       domain.ChunkID("0123456789abcdef", i),
			DocID:    "0123456789abcdef",
			Order:    i,
			Text:     "chunk",
			Tokens:   tokens,
			Citation: domain.NewCitation("0123456789abcdef", domain.MediaTypeText, i*tokens, (i+1)*tokens),
		}
	}
	return chunks
}
