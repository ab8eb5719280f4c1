package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
	"github.com/custodia-labs/contextpacket/internal/evaluator"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// ReportTitle heads the markdown evaluation report.
const ReportTitle = "Reranker Evaluation Report"

// EvaluationService compares persisted scores with human judgements.
type EvaluationService struct {
	chunks      driven.ChunkReader
	scores      driven.ScoreReader
	annotations driven.AnnotationStore
	queryStore  driven.QueryStore
	queries     []domain.Query
	now         func() time.Time
}

// EvaluationOption configures the evaluation service.
type EvaluationOption func(*EvaluationService)

// WithQueries sets the configured evaluation queries.
func WithQueries(queries []domain.Query) EvaluationOption {
	return func(s *EvaluationService) {
		s.queries = queries
	}
}

// WithQueryStore sets the store consulted when no queries are configured.
func WithQueryStore(store driven.QueryStore) EvaluationOption {
	return func(s *EvaluationService) {
		s.queryStore = store
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) EvaluationOption {
	return func(s *EvaluationService) {
		s.now = now
	}
}

// NewEvaluationService creates an evaluation service.
func NewEvaluationService(
	chunks driven.ChunkReader,
	scores driven.ScoreReader,
	annotations driven.AnnotationStore,
	opts ...EvaluationOption,
) *EvaluationService {
	s := &EvaluationService{
		chunks:      chunks,
		scores:      scores,
		annotations: annotations,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// evaluationData is everything one evaluation run reads.
type evaluationData struct {
	chunks      []domain.Chunk
	scores      map[string]float64
	annotations domain.AnnotationSet
}

// Evaluate evaluates every query and aggregates the results.
func (s *EvaluationService) Evaluate(ctx context.Context) (*domain.EvaluationReport, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	queries, err := s.resolveQueries(ctx, data.annotations)
	if err != nil {
		return nil, err
	}

	results := make([]domain.EvaluationResult, 0, len(queries))
	for _, q := range queries {
		results = append(results, evaluate(q, data))
	}

	return &domain.EvaluationReport{
		Overall:     evaluator.Aggregate(results),
		Results:     results,
		GeneratedAt: s.now(),
	}, nil
}

// EvaluateQuery evaluates a single query by ID.
// Queries that are not configured are evaluated with the ID as their text.
func (s *EvaluationService) EvaluateQuery(ctx context.Context, queryID string) (*domain.EvaluationResult, error) {
	if queryID == "" {
		return nil, fmt.Errorf("%w: query id is required", domain.ErrInvalidInput)
	}

	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	queries, err := s.resolveQueries(ctx, data.annotations)
	if err != nil {
		return nil, err
	}

	q := domain.Query{ID: queryID, Text: queryID}
	for _, candidate := range queries {
		if candidate.ID == queryID {
			q = candidate
			break
		}
	}

	result := evaluate(q, data)
	return &result, nil
}

func evaluate(q domain.Query, data *evaluationData) domain.EvaluationResult {
	result := evaluator.EvaluateQuery(q.ID, data.chunks, data.annotations, data.scores)
	result.QueryText = q.Text
	result.QueryType = q.Type
	return result
}

// load reads chunks, scores and annotations. A missing score file counts
// as no scores; a missing chunk file is an error.
func (s *EvaluationService) load(ctx context.Context) (*evaluationData, error) {
	chunks, err := s.chunks.ReadChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	scores := make(map[string]float64)
	scored, err := s.scores.ReadScores(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("no score file found, every query will lack scores")
	case err != nil:
		return nil, fmt.Errorf("load scores: %w", err)
	}
	for _, sc := range scored {
		scores[sc.ID] = sc.Score
	}

	annotations, err := s.annotations.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}

	return &evaluationData{chunks: chunks, scores: scores, annotations: annotations}, nil
}

// resolveQueries picks the query list: configured queries first, then
// stored queries, then the sorted query IDs found in the annotations.
func (s *EvaluationService) resolveQueries(ctx context.Context, annotations domain.AnnotationSet) ([]domain.Query, error) {
	if len(s.queries) > 0 {
		return s.queries, nil
	}

	if s.queryStore != nil {
		stored, err := s.queryStore.ListQueries(ctx)
		if err != nil {
			return nil, fmt.Errorf("list queries: %w", err)
		}
		if len(stored) > 0 {
			return stored, nil
		}
	}

	ids := annotations.QueryIDs()
	queries := make([]domain.Query, len(ids))
	for i, id := range ids {
		queries[i] = domain.Query{ID: id, Text: id}
	}
	return queries, nil
}

// Markdown renders a report as a human-readable document.
func (s *EvaluationService) Markdown(report *domain.EvaluationReport) string {
	return RenderMarkdown(report)
}

// RenderMarkdown renders a report with overall statistics followed by one
// section per query.
func RenderMarkdown(report *domain.EvaluationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", ReportTitle)

	stats := report.Overall
	b.WriteString("## Overall Statistics\n")
	fmt.Fprintf(&b, "- Total queries: %d\n", stats.TotalQueries)
	fmt.Fprintf(&b, "- Queries with evaluation data: %d\n", stats.QueriesWithData)
	fmt.Fprintf(&b, "- Average F1 score: %.3f\n", stats.AverageF1)
	if stats.AverageAUC != nil && *stats.AverageAUC > 0 {
		fmt.Fprintf(&b, "- Average AUC score: %.3f\n", *stats.AverageAUC)
	}
	b.WriteString("\n## Per-Query Results\n")

	for _, r := range report.Results {
		title := r.QueryText
		if title == "" {
			title = r.QueryID
		}
		fmt.Fprintf(&b, "### %s\n", title)

		if !r.HasData() {
			fmt.Fprintf(&b, "**Error**: %s\n\n", r.Error)
			continue
		}

		fmt.Fprintf(&b, "**Type**: %s\n", r.QueryType)
		fmt.Fprintf(&b, "**Chunks annotated**: %d/%d\n", r.AnnotatedChunks, r.TotalChunks)
		fmt.Fprintf(&b, "**Relevance rate**: %.1f%%\n", r.RelevanceRate*100)
		fmt.Fprintf(&b, "**Optimal F1**: %.3f (threshold: %.2f)\n", r.OptimalF1, r.OptimalThreshold)
		fmt.Fprintf(&b, "**Precision**: %.3f\n", r.OptimalPrecision)
		fmt.Fprintf(&b, "**Recall**: %.3f\n", r.OptimalRecall)
		if r.AUC != nil && *r.AUC != 0 {
			fmt.Fprintf(&b, "**AUC**: %.3f\n", *r.AUC)
		}
		b.WriteString("\n")
	}

	return b.String()
}
