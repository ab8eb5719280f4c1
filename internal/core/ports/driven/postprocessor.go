package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// ChunkStrategy splits a parsed document into chunks with local indices.
// Strategies are built by name from configuration.
type ChunkStrategy interface {
	// Name returns the strategy name for logging and configuration.
	Name() string

	// Chunk lazily yields the document's chunks.
	// An error ends the sequence.
	Chunk(doc *domain.ParsedDocument) iter.Seq2[domain.Chunk, error]

	// ChunkAll collects every chunk, returning nothing if any step fails.
	ChunkAll(doc *domain.ParsedDocument) ([]domain.Chunk, error)
}

// DocumentProcessor parses and chunks ingested files on a worker pool.
type DocumentProcessor interface {
	// Parse parses every file, skipping those that fail.
	// Returned documents keep the input order.
	Parse(ctx context.Context, files []domain.FileDescriptor) ([]*domain.ParsedDocument, domain.ChunkReport, error)

	// Process parses and chunks every file and assigns global order.
	// Per-file failures are counted in the report.
	Process(ctx context.Context, files []domain.FileDescriptor) ([]domain.Chunk, domain.ChunkReport, error)
}
