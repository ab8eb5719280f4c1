package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

// Ensure AnnotationService implements the interface.
var _ driving.AnnotationService = (*AnnotationService)(nil)

// AnnotationService manages relevance judgements and evaluation queries.
type AnnotationService struct {
	store   driven.AnnotationStore
	queries driven.QueryStore
	archive driven.AnnotationArchive
	now     func() time.Time
}

// NewAnnotationService creates an annotation service.
// The query store and archive may be nil; the operations that need them then fail.
func NewAnnotationService(store driven.AnnotationStore, queries driven.QueryStore, archive driven.AnnotationArchive) *AnnotationService {
	return &AnnotationService{
		store:   store,
		queries: queries,
		archive: archive,
		now:     time.Now,
	}
}

// Annotate records a judgement stamped with the current time.
func (s *AnnotationService) Annotate(ctx context.Context, queryID, chunkID string, relevance domain.Relevance) error {
	if strings.TrimSpace(queryID) == "" || strings.TrimSpace(chunkID) == "" {
		return fmt.Errorf("%w: query id and chunk id are required", domain.ErrInvalidInput)
	}
	if !relevance.IsValid() {
		return fmt.Errorf("%w: relevance must be -1, 0 or 1, got %d", domain.ErrInvalidInput, relevance)
	}

	a := domain.Annotation{Relevance: relevance, Timestamp: s.now()}
	if err := s.store.Put(ctx, queryID, chunkID, a); err != nil {
		return fmt.Errorf("save annotation: %w", err)
	}
	logger.Debug("annotated %s/%s as %s", queryID, chunkID, relevance)
	return nil
}

// Remove deletes a judgement.
func (s *AnnotationService) Remove(ctx context.Context, queryID, chunkID string) error {
	return s.store.Delete(ctx, queryID, chunkID)
}

// List returns all judgements, or those of one query when queryID is non-empty.
func (s *AnnotationService) List(ctx context.Context, queryID string) (domain.AnnotationSet, error) {
	set, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	if queryID == "" {
		return set, nil
	}

	filtered := make(domain.AnnotationSet)
	if byChunk, ok := set[queryID]; ok {
		filtered[queryID] = byChunk
	}
	return filtered, nil
}

// Import merges judgements from a file into the store. Imported entries
// replace existing ones for the same (query, chunk) pair. Queries carried
// by an export document are stored too when a query store is configured.
func (s *AnnotationService) Import(ctx context.Context, path string) (int, error) {
	if s.archive == nil {
		return 0, fmt.Errorf("%w: no annotation archive configured", domain.ErrInvalidConfiguration)
	}

	doc, err := s.archive.ReadArchive(path)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}

	set, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load annotations: %w", err)
	}
	for queryID, byChunk := range doc.Annotations {
		for chunkID, a := range byChunk {
			set.Set(queryID, chunkID, a)
		}
	}
	if err := s.store.Save(ctx, set); err != nil {
		return 0, fmt.Errorf("save annotations: %w", err)
	}

	if s.queries != nil {
		for _, q := range doc.Queries {
			if err := s.queries.SaveQuery(ctx, q); err != nil {
				return 0, fmt.Errorf("save query %s: %w", q.ID, err)
			}
		}
	}

	count := doc.Annotations.Count()
	logger.Info("imported %d annotations from %s", count, path)
	return count, nil
}

// Export writes every judgement and stored query to a file.
func (s *AnnotationService) Export(ctx context.Context, path string) error {
	if s.archive == nil {
		return fmt.Errorf("%w: no annotation archive configured", domain.ErrInvalidConfiguration)
	}

	set, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load annotations: %w", err)
	}

	var queries []domain.Query
	if s.queries != nil {
		queries, err = s.queries.ListQueries(ctx)
		if err != nil {
			return fmt.Errorf("list queries: %w", err)
		}
	}

	doc := domain.AnnotationExport{
		Queries:         queries,
		Annotations:     set,
		ExportTimestamp: s.now(),
	}
	if err := s.archive.WriteArchive(path, doc); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// AddQuery stores an evaluation query.
func (s *AnnotationService) AddQuery(ctx context.Context, q domain.Query) error {
	if s.queries == nil {
		return fmt.Errorf("%w: no query store configured", domain.ErrInvalidConfiguration)
	}
	if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: query id and text are required", domain.ErrInvalidInput)
	}
	return s.queries.SaveQuery(ctx, q)
}

// Queries returns the stored evaluation queries.
func (s *AnnotationService) Queries(ctx context.Context) ([]domain.Query, error) {
	if s.queries == nil {
		return nil, nil
	}
	return s.queries.ListQueries(ctx)
}
