package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
)

// Ensure CitationService implements the interface.
var _ driving.CitationService = (*CitationService)(nil)

// CitationService resolves citations against a chunk file.
type CitationService struct {
	chunks driven.ChunkReader
}

// NewCitationService creates a citation service.
func NewCitationService(chunks driven.ChunkReader) *CitationService {
	return &CitationService{chunks: chunks}
}

// Resolve returns the persisted chunk carrying the citation.
// The citation is parsed first so malformed input fails with domain.ErrInvalidInput.
func (s *CitationService) Resolve(ctx context.Context, citation string) (*domain.Chunk, error) {
	ref, err := domain.ParseCitation(citation)
	if err != nil {
		return nil, err
	}

	chunks, err := s.chunks.ReadChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	want := ref.String()
	for i := range chunks {
		if chunks[i].Citation == want {
			c := chunks[i]
			c.StartOffset = ref.StartOffset
			c.EndOffset = ref.EndOffset
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: citation %s", domain.ErrNotFound, citation)
}
