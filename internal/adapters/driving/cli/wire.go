package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/scoring"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/logger"
	"github.com/custodia-labs/contextpacket/internal/normalisers"
	"github.com/custodia-labs/contextpacket/internal/normalisers/html"
	"github.com/custodia-labs/contextpacket/internal/normalisers/pdf"
	"github.com/custodia-labs/contextpacket/internal/normalisers/plaintext"
	"github.com/custodia-labs/contextpacket/internal/postprocessors"
)

// selectScorer chooses the scorer for the configured provider.
var selectScorer = scoring.CreateAndValidate

// newProcessor builds the parse and chunk pipeline described by settings.
func newProcessor(settings *domain.Settings) (*postprocessors.Pipeline, error) {
	tok, err := tokenizer.DefaultRegistry().Get(settings.Chunking.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}

	strategies := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(strategies)
	strategy, err := strategies.Build(postprocessors.DefaultStrategy, tok, map[string]any{
		"chunk_size": settings.Chunking.ChunkSize,
		"overlap":    settings.Chunking.Overlap,
	})
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	parsers := normalisers.NewRegistry(plaintext.New(), html.New(), pdf.New())
	return postprocessors.NewPipeline(parsers, strategy, postprocessors.WithWorkers(settings.Ingest.Workers)), nil
}

// openScorer selects a scorer and logs any fallback.
func openScorer(ctx context.Context, settings *domain.Settings) (*scoring.Selection, error) {
	sel, err := selectScorer(ctx, &settings.Scoring)
	if err != nil {
		return nil, err
	}
	for _, w := range sel.Warnings {
		logger.Warn("%s", w)
	}
	if sel.FellBack {
		logger.Warn("using %s scorer", sel.Scorer.Name())
	}
	return sel, nil
}

// annotationBackend is an opened annotation store.
// Queries is nil for JSON files.
type annotationBackend struct {
	Store   driven.AnnotationStore
	Queries driven.QueryStore
	close   func() error
}

func (b *annotationBackend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openAnnotations opens a SQLite database for .db paths and a JSON file otherwise.
func openAnnotations(path string) (*annotationBackend, error) {
	if strings.EqualFold(filepath.Ext(path), ".db") {
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return &annotationBackend{Store: store, Queries: store, close: store.Close}, nil
	}
	return &annotationBackend{Store: jsonfile.NewAnnotationFile(path)}, nil
}
