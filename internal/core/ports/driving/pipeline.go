package driving

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// PipelineService runs ingest, parsing, chunking, ordering and scoring.
type PipelineService interface {
	// Run executes the pipeline described by the request.
	// Partial success is reported through counts in the report.
	Run(ctx context.Context, req PipelineRequest) (*domain.PipelineReport, error)

	// Chunk ingests, parses and chunks the corpus, returning globally ordered chunks.
	Chunk(ctx context.Context, corpusRoot string) ([]domain.Chunk, *domain.PipelineReport, error)

	// Watch runs the pipeline, then reruns it whenever corpus files change,
	// until ctx is cancelled. Each run's outcome is passed to onRun.
	Watch(ctx context.Context, req PipelineRequest, onRun func(*domain.PipelineReport, error)) error
}

// PipelineRequest describes one pipeline run.
type PipelineRequest struct {
	// CorpusRoot is the directory to ingest.
	CorpusRoot string

	// Query scores chunks when non-empty.
	Query string

	// OutputDir receives chunk, score and packet files.
	OutputDir string

	// DryRun stops after parsing.
	DryRun bool

	// DumpChunks writes the chunk file.
	DumpChunks bool

	// DumpScores writes the score file.
	DumpScores bool

	// WritePackets writes context packets when a query is scored.
	WritePackets bool
}

// ScoringService batches chunks through the scorer.
type ScoringService interface {
	// Score returns one scored chunk per input chunk, in input order.
	Score(ctx context.Context, query string, chunks []domain.Chunk) ([]domain.ScoredChunk, *domain.ScoreReport, error)

	// ScoreStream scores like Score and hands each completed batch to sink
	// before the next batch is requested. A sink error stops scoring.
	ScoreStream(ctx context.Context, query string, chunks []domain.Chunk, sink BatchSink) ([]domain.ScoredChunk, *domain.ScoreReport, error)
}

// BatchSink receives scored batches in order as they complete.
type BatchSink func(ctx context.Context, batch []domain.ScoredChunk) error

// PacketService builds context packets from scored chunks.
type PacketService interface {
	// Build selects chunks for each named token limit.
	Build(query string, scored []domain.ScoredChunk) map[string]domain.ContextPacket

	// Write builds and writes every packet, returning the written locations.
	Write(ctx context.Context, query string, scored []domain.ScoredChunk) ([]string, error)
}
