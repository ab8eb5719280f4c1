package jsonl

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

var (
	_ driven.ChunkWriter = (*ChunkFile)(nil)
	_ driven.ChunkReader = (*ChunkFile)(nil)
)

// DefaultChunksFile is the chunk file name written into the output directory.
const DefaultChunksFile = "chunks.jsonl"

type chunkRecord struct {
	ID       string `json:"id"`
	DocID    string `json:"doc_id"`
	Order    int    `json:"order"`
	Text     string `json:"text"`
	Tokens   int    `json:"tokens"`
	Citation string `json:"citation"`
}

// ChunkFile reads and writes a chunk file.
type ChunkFile struct {
	path string
}

// NewChunkFile creates a chunk file handle for path.
func NewChunkFile(path string) *ChunkFile {
	return &ChunkFile{path: path}
}

// Path returns the file path.
func (f *ChunkFile) Path() string {
	return f.path
}

// WriteChunks writes all chunks, replacing the file.
func (f *ChunkFile) WriteChunks(ctx context.Context, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([]chunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = chunkRecord{
			ID:       c.ID,
			DocID:    c.DocID,
			Order:    c.Order,
			Text:     c.Text,
			Tokens:   c.Tokens,
			Citation: c.Citation,
		}
	}

	if err := writeRecords(f.path, false, records); err != nil {
		return fmt.Errorf("writing chunks: %w: %w", domain.ErrIOFailure, err)
	}
	return nil
}

// ReadChunks returns the chunks in file order with zero offsets.
func (f *ChunkFile) ReadChunks(ctx context.Context) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := readRecords[chunkRecord](f.path)
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w: %w", domain.ErrIOFailure, err)
	}

	chunks := make([]domain.Chunk, len(records))
	for i, r := range records {
		chunks[i] = domain.Chunk{
			ID:       r.ID,
			DocID:    r.DocID,
			Order:    r.Order,
			Text:     r.Text,
			Tokens:   r.Tokens,
			Citation: r.Citation,
		}
	}
	return chunks, nil
}
