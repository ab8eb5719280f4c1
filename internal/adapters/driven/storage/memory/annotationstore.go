package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// Ensure AnnotationStore implements the interfaces.
var (
	_ driven.AnnotationStore = (*AnnotationStore)(nil)
	_ driven.QueryStore      = (*AnnotationStore)(nil)
)

// AnnotationStore is an in-memory annotation and query store.
type AnnotationStore struct {
	mu          sync.RWMutex
	annotations domain.AnnotationSet
	queries     map[string]domain.Query
}

// NewAnnotationStore creates an empty in-memory annotation store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{
		annotations: make(domain.AnnotationSet),
		queries:     make(map[string]domain.Query),
	}
}

// Load returns a copy of every annotation.
func (s *AnnotationStore) Load(_ context.Context) (domain.AnnotationSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.annotations.Clone(), nil
}

// Save replaces the stored annotations.
func (s *AnnotationStore) Save(_ context.Context, set domain.AnnotationSet) error {
	for queryID, byChunk := range set {
		for chunkID, a := range byChunk {
			if !a.Relevance.IsValid() {
				return fmt.Errorf("%w: relevance %d for %s/%s", domain.ErrInvalidInput, a.Relevance, queryID, chunkID)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = set.Clone()
	return nil
}

// Put records a single annotation.
func (s *AnnotationStore) Put(_ context.Context, queryID, chunkID string, a domain.Annotation) error {
	if queryID == "" || chunkID == "" {
		return fmt.Errorf("%w: query and chunk ids are required", domain.ErrInvalidInput)
	}
	if !a.Relevance.IsValid() {
		return fmt.Errorf("%w: relevance %d", domain.ErrInvalidInput, a.Relevance)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations.Set(queryID, chunkID, a)
	return nil
}

// Delete removes a single annotation.
func (s *AnnotationStore) Delete(_ context.Context, queryID, chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byChunk, ok := s.annotations[queryID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := byChunk[chunkID]; !ok {
		return domain.ErrNotFound
	}
	delete(byChunk, chunkID)
	if len(byChunk) == 0 {
		delete(s.annotations, queryID)
	}
	return nil
}

// SaveQuery stores or updates a query.
func (s *AnnotationStore) SaveQuery(_ context.Context, q domain.Query) error {
	if q.ID == "" {
		return fmt.Errorf("%w: query id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[q.ID] = q
	return nil
}

// ListQueries returns all queries ordered by ID.
func (s *AnnotationStore) ListQueries(_ context.Context) ([]domain.Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Query, 0, len(s.queries))
	for _, q := range s.queries {
		result = append(result, q)
	}
	slices.SortFunc(result, func(a, b domain.Query) int {
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

// DeleteQuery removes a query.
func (s *AnnotationStore) DeleteQuery(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.queries, id)
	return nil
}
