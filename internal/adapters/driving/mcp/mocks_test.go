package mcp

import (
	"context"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// mockEvaluationService is a mock implementation of driving.EvaluationService.
type mockEvaluationService struct {
	report    *domain.EvaluationReport
	result    *domain.EvaluationResult
	markdown  string
	err       error
	lastQuery string
}

func (m *mockEvaluationService) Evaluate(_ context.Context) (*domain.EvaluationReport, error) {
	return m.report, m.err
}

func (m *mockEvaluationService) EvaluateQuery(_ context.Context, queryID string) (*domain.EvaluationResult, error) {
	m.lastQuery = queryID
	return m.result, m.err
}

func (m *mockEvaluationService) Markdown(_ *domain.EvaluationReport) string {
	return m.markdown
}

// mockCitationService is a mock implementation of driving.CitationService.
type mockCitationService struct {
	chunk *domain.Chunk
	err   error
}

func (m *mockCitationService) Resolve(_ context.Context, _ string) (*domain.Chunk, error) {
	return m.chunk, m.err
}

// mockAnnotationService is a mock implementation of driving.AnnotationService.
type mockAnnotationService struct {
	set     domain.AnnotationSet
	queries []domain.Query
	err     error
}

func newMockAnnotationService() *mockAnnotationService {
	return &mockAnnotationService{set: domain.AnnotationSet{}}
}

func (m *mockAnnotationService) Annotate(_ context.Context, queryID, chunkID string, r domain.Relevance) error {
	if m.err != nil {
		return m.err
	}
	m.set.Set(queryID, chunkID, domain.Annotation{Relevance: r})
	return nil
}

func (m *mockAnnotationService) Remove(_ context.Context, queryID, chunkID string) error {
	delete(m.set[queryID], chunkID)
	return m.err
}

func (m *mockAnnotationService) List(_ context.Context, queryID string) (domain.AnnotationSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := domain.AnnotationSet{}
	for chunkID, a := range m.set[queryID] {
		out.Set(queryID, chunkID, a)
	}
	return out, nil
}

func (m *mockAnnotationService) Import(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockAnnotationService) Export(_ context.Context, _ string) error {
	return m.err
}

func (m *mockAnnotationService) AddQuery(_ context.Context, q domain.Query) error {
	m.queries = append(m.queries, q)
	return m.err
}

func (m *mockAnnotationService) Queries(_ context.Context) ([]domain.Query, error) {
	return m.queries, m.err
}

func basePorts() *Ports {
	return &Ports{
		Evaluation: &mockEvaluationService{},
		Citation:   &mockCitationService{},
	}
}
