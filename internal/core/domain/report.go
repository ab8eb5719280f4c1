package domain

import (
	"maps"
	"slices"
)

// IngestReport counts the outcome of one corpus walk.
type IngestReport struct {
	// Included is the number of files hashed and emitted.
	Included int

	// Skipped is the number of matching files that could not be read.
	Skipped int

	// ByExtension counts included files per extension.
	ByExtension map[string]int
}

// Extensions returns the counted extensions in sorted order.
func (r *IngestReport) Extensions() []string {
	return slices.Sorted(maps.Keys(r.ByExtension))
}

// ChunkReport counts the outcome of parsing and chunking a corpus.
type ChunkReport struct {
	// Documents is the number of documents chunked successfully.
	Documents int

	// Chunks is the total number of chunks after global ordering.
	Chunks int

	// Unsupported is the number of files no parser accepted.
	Unsupported int

	// IOFailures is the number of files that could not be read for parsing.
	IOFailures int

	// ParseFailures is the number of files a parser failed on.
	ParseFailures int

	// EncodingFailures is the number of documents whose chunking was aborted.
	EncodingFailures int

	// UncoveredTokens is the number of tokens, summed over documents, that no
	// chunk span contains. Only the leading window padding is expected here.
	UncoveredTokens int
}

// Skipped returns the number of documents that produced no chunks due to errors.
func (r *ChunkReport) Skipped() int {
	return r.Unsupported + r.IOFailures + r.ParseFailures + r.EncodingFailures
}

// ScoreReport counts the outcome of scoring chunks for one query.
type ScoreReport struct {
	Query   string
	Scorer  string
	Batches int
	Scored  int
}

// PipelineReport summarises one end-to-end run.
type PipelineReport struct {
	RunID       string
	Ingest      IngestReport
	Chunking    ChunkReport
	Scoring     *ScoreReport
	ChunksPath  string
	ScoresPath  string
	PacketPaths []string
	DryRun      bool
}
