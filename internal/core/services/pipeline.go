package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// DefaultDebounce is how long Watch waits for changes to settle before rerunning.
const DefaultDebounce = 500 * time.Millisecond

// PipelineService runs ingest, parse, chunk, order and score as one pass.
type PipelineService struct {
	corpora   driven.CorpusFactory
	processor driven.DocumentProcessor
	scoring   driving.ScoringService
	layout    driven.OutputLayout
	settings  domain.Settings
	debounce  time.Duration
	newRunID  func() string
}

// PipelineOption configures the pipeline service.
type PipelineOption func(*PipelineService)

// WithScoring sets the scoring service used when a request carries a query.
func WithScoring(scoring driving.ScoringService) PipelineOption {
	return func(s *PipelineService) {
		s.scoring = scoring
	}
}

// WithDebounce sets the watch debounce interval.
func WithDebounce(d time.Duration) PipelineOption {
	return func(s *PipelineService) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithRunIDs overrides the run id generator.
func WithRunIDs(next func() string) PipelineOption {
	return func(s *PipelineService) {
		s.newRunID = next
	}
}

// NewPipelineService creates a pipeline service.
func NewPipelineService(
	corpora driven.CorpusFactory,
	processor driven.DocumentProcessor,
	layout driven.OutputLayout,
	settings domain.Settings,
	opts ...PipelineOption,
) *PipelineService {
	s := &PipelineService{
		corpora:   corpora,
		processor: processor,
		layout:    layout,
		settings:  settings,
		debounce:  DefaultDebounce,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the pipeline described by the request.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *PipelineService) Run(ctx context.Context, req driving.PipelineRequest) (*domain.PipelineReport, error) {
	if req.Query != "" && !req.DryRun && s.scoring == nil {
		return nil, fmt.Errorf("%w: a query was given but no scorer is configured", domain.ErrInvalidConfiguration)
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.settings.OutputDir
	}

	report := &domain.PipelineReport{RunID: s.newRunID(), DryRun: req.DryRun}
	log := logger.Logger().With("run_id", report.RunID)
	log.Info("run started", "corpus", req.CorpusRoot, "query", req.Query, "dry_run", req.DryRun)

	// 1. Ingest
	logger.Section("Ingest")
	files, err := s.ingest(ctx, req.CorpusRoot, report)
	if err != nil {
		return nil, err
	}

	// 2. Parse only
	if req.DryRun {
		logger.Section("Parse")
		_, chunkReport, err := s.processor.Parse(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		report.Chunking = chunkReport
		log.Info("dry run finished", "parsed", chunkReport.Documents, "skipped", chunkReport.Skipped())
		return report, nil
	}

	// 3. Parse, chunk and order
	logger.Section("Chunk")
	chunks, chunkReport, err := s.processor.Process(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	report.Chunking = chunkReport
	log.Info("chunked corpus", "documents", chunkReport.Documents, "chunks", chunkReport.Chunks,
		"skipped", chunkReport.Skipped())

	if req.DumpChunks {
		w, path := s.layout.Chunks(outputDir)
		if err := w.WriteChunks(ctx, chunks); err != nil {
			return nil, fmt.Errorf("write chunks: %w", err)
		}
		report.ChunksPath = path
		log.Info("wrote chunks", "path", path)
	}

	if req.Query == "" {
		return report, nil
	}

	// 4. Score, streaming batches to the score file
	logger.Section("Score")
	var sink driving.BatchSink
	if req.DumpScores {
		w, path := s.layout.Scores(outputDir)
		if err := w.WriteScores(ctx, nil); err != nil {
			return nil, fmt.Errorf("write scores: %w", err)
		}
		sink = w.AppendScores
		report.ScoresPath = path
	}

	scored, scoreReport, err := s.scoring.ScoreStream(ctx, req.Query, chunks, sink)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	report.Scoring = scoreReport
	log.Info("scored chunks", "scorer", scoreReport.Scorer, "batches", scoreReport.Batches, "scored", scoreReport.Scored)

	// 5. Context packets
	if req.WritePackets {
		logger.Section("Packets")
		packets := NewPacketService(s.settings.Limits, s.settings.Scoring.Threshold, s.layout.Packets(outputDir))
		paths, err := packets.Write(ctx, req.Query, scored)
		if err != nil {
			return nil, fmt.Errorf("write packets: %w", err)
		}
		report.PacketPaths = paths
	}

	return report, nil
}

// Chunk ingests, parses and chunks the corpus.
func (s *PipelineService) Chunk(ctx context.Context, corpusRoot string) ([]domain.Chunk, *domain.PipelineReport, error) {
	report := &domain.PipelineReport{RunID: s.newRunID()}

	files, err := s.ingest(ctx, corpusRoot, report)
	if err != nil {
		return nil, nil, err
	}

	chunks, chunkReport, err := s.processor.Process(ctx, files)
	if err != nil {
		return nil, nil, fmt.Errorf("chunk: %w", err)
	}
	report.Chunking = chunkReport
	return chunks, report, nil
}

// Watch runs the pipeline once, then again after each settled burst of
// corpus changes. It returns nil when ctx is cancelled.
func (s *PipelineService) Watch(ctx context.Context, req driving.PipelineRequest, onRun func(*domain.PipelineReport, error)) error {
	corpus, err := s.corpora.Open(req.CorpusRoot, s.settings.Ingest)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer corpus.Close()

	changes, err := corpus.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch corpus: %w", err)
	}

	onRun(s.Run(ctx, req))

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("%s %s", change.Type, change.RelativePath)
			pending++
			timer.Reset(s.debounce)
		case <-timer.C:
			if pending == 0 {
				continue
			}
			logger.Info("rerunning after %d changes", pending)
			pending = 0
			onRun(s.Run(ctx, req))
		}
	}
}

// ingest opens the corpus and walks it.
func (s *PipelineService) ingest(ctx context.Context, root string, report *domain.PipelineReport) ([]domain.FileDescriptor, error) {
	corpus, err := s.corpora.Open(root, s.settings.Ingest)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer corpus.Close()

	files, ingestReport, err := corpus.Ingest(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	report.Ingest = ingestReport
	logger.Info("ingested %d files (%d skipped)", ingestReport.Included, ingestReport.Skipped)
	return files, nil
}
