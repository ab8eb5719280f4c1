// Package postprocessors turns ingested files into globally ordered chunks.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/logger"
	"github.com/custodia-labs/contextpacket/internal/postprocessors/chunker"
)

// DefaultWorkers is the default size of the parse and chunk worker pool.
const DefaultWorkers = domain.DefaultWorkers

// Pipeline parses and chunks documents on a bounded worker pool.
// Documents share no state, so each is handled independently; the global
// orderer runs only after every document has finished.
type Pipeline struct {
	parsers  driven.ParserRegistry
	strategy driven.ChunkStrategy
	workers  int
}

// PipelineOption configures the pipeline.
type PipelineOption func(*Pipeline)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline creates a processing pipeline.
func NewPipeline(parsers driven.ParserRegistry, strategy driven.ChunkStrategy, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		parsers:  parsers,
		strategy: strategy,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// outcome is the per-file result slot written by exactly one worker.
type outcome struct {
	doc       *domain.ParsedDocument
	chunks    []domain.Chunk
	uncovered int
	err       error
}

// Parse parses every file, skipping those that fail.
// Returned documents keep the input order.
func (p *Pipeline) Parse(ctx context.Context, files []domain.FileDescriptor) ([]*domain.ParsedDocument, domain.ChunkReport, error) {
	outcomes, err := p.run(ctx, files, false)
	if err != nil {
		return nil, domain.ChunkReport{}, err
	}

	var report domain.ChunkReport
	docs := make([]*domain.ParsedDocument, 0, len(files))
	for i, o := range outcomes {
		if o.err != nil {
			classify(&report, files[i], o.err)
			continue
		}
		docs = append(docs, o.doc)
		report.Documents++
	}
	return docs, report, nil
}

// Process parses and chunks every file and assigns global order.
// Files that fail are counted in the report and contribute no chunks.
// Only context cancellation fails the whole call.
func (p *Pipeline) Process(ctx context.Context, files []domain.FileDescriptor) ([]domain.Chunk, domain.ChunkReport, error) {
	if p.strategy == nil {
		return nil, domain.ChunkReport{}, fmt.Errorf("pipeline has no chunk strategy: %w", domain.ErrInvalidConfiguration)
	}

	outcomes, err := p.run(ctx, files, true)
	if err != nil {
		return nil, domain.ChunkReport{}, err
	}

	var report domain.ChunkReport
	perDoc := make([][]domain.Chunk, 0, len(outcomes))
	for i, o := range outcomes {
		if o.err != nil {
			classify(&report, files[i], o.err)
			continue
		}
		perDoc = append(perDoc, o.chunks)
		report.Documents++
		report.UncoveredTokens += o.uncovered
	}

	ordered := AssignGlobalOrder(perDoc)
	report.Chunks = len(ordered)
	return ordered, report, nil
}

// run fans the files out to the worker pool.
func (p *Pipeline) run(ctx context.Context, files []domain.FileDescriptor, chunk bool) ([]outcome, error) {
	if p.parsers == nil {
		return nil, fmt.Errorf("pipeline has no parsers: %w", domain.ErrInvalidConfiguration)
	}

	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := p.parsers.Parse(gctx, files[i])
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				outcomes[i].err = err
				return nil
			}
			outcomes[i].doc = doc

			if !chunk {
				return nil
			}

			chunks, err := p.strategy.ChunkAll(doc)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].chunks = chunks
			outcomes[i].uncovered = uncoveredTokens(files[i], chunks)
			logger.Debug("chunked %s: %d chunks", files[i].RelativePath, len(chunks))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("processing documents: %w", err)
	}
	return outcomes, nil
}

// uncoveredTokens counts the document tokens no chunk span contains.
// The last chunk always ends at the document's token count.
func uncoveredTokens(file domain.FileDescriptor, chunks []domain.Chunk) int {
	n := 0
	spans := make([]chunker.Span, len(chunks))
	for i, c := range chunks {
		spans[i] = chunker.Span{Start: c.StartOffset, End: c.EndOffset}
		n = max(n, c.EndOffset)
	}

	total := 0
	gaps := chunker.Uncovered(n, spans)
	for _, g := range gaps {
		total += g.Len()
	}
	if total > 0 {
		logger.Debug("%s: %d tokens outside any chunk %v", file.RelativePath, total, gaps)
	}
	return total
}

// classify counts a per-file failure and logs it.
func classify(report *domain.ChunkReport, file domain.FileDescriptor, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		report.Unsupported++
		logger.Debug("skipped %s: no parser", file.RelativePath)
		return
	case errors.Is(err, domain.ErrEncoding):
		report.EncodingFailures++
	case errors.Is(err, domain.ErrIOFailure):
		report.IOFailures++
	default:
		report.ParseFailures++
	}
	logger.Warn("skipped %s: %v", file.RelativePath, err)
}
