package driven

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// ChunkWriter persists ordered chunks.
type ChunkWriter interface {
	// WriteChunks writes all chunks, replacing any previous content.
	WriteChunks(ctx context.Context, chunks []domain.Chunk) error
}

// ChunkReader loads persisted chunks.
// Token offsets are not preserved by the chunk file format.
type ChunkReader interface {
	// ReadChunks returns chunks in file order.
	ReadChunks(ctx context.Context) ([]domain.Chunk, error)
}

// ScoreWriter persists scored chunks.
type ScoreWriter interface {
	// WriteScores writes all scored chunks, replacing any previous content.
	WriteScores(ctx context.Context, scored []domain.ScoredChunk) error

	// AppendScores appends scored chunks, creating the file if needed.
	AppendScores(ctx context.Context, scored []domain.ScoredChunk) error
}

// ScoreReader loads persisted scored chunks.
// Text and DocID are not stored in the score file and come back empty.
type ScoreReader interface {
	// ReadScores returns scored chunks in file order.
	ReadScores(ctx context.Context) ([]domain.ScoredChunk, error)
}

// PacketWriter writes a context packet for a query.
type PacketWriter interface {
	// WritePacket writes the selected chunks under the given packet name.
	// Returns the written location.
	WritePacket(ctx context.Context, name string, packet domain.ContextPacket) (string, error)
}

// OutputLayout opens the files a run writes under an output directory.
type OutputLayout interface {
	// Chunks returns the chunk file writer and its path.
	Chunks(dir string) (ChunkWriter, string)

	// Scores returns the score file writer and its path.
	Scores(dir string) (ScoreWriter, string)

	// Packets returns the packet writer for dir.
	Packets(dir string) PacketWriter
}
