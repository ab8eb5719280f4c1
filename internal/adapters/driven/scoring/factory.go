// Package scoring builds the scorer selected by configuration.
package scoring

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/embedding/openai"
	scoringembed "github.com/custodia-labs/contextpacket/internal/adapters/driven/scoring/embedding"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/scoring/mock"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/scoring/reranker"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for scorer connectivity validation.
const pingTimeout = 5 * time.Second

// Selection is the outcome of choosing a scorer.
type Selection struct {
	Scorer   driven.Scorer
	Warnings []string // Non-fatal issues that caused fallback.
	FellBack bool     // True if the mock scorer replaced an unreachable reranker.
}

// Close releases the selected scorer.
func (s *Selection) Close() error {
	if s.Scorer == nil {
		return nil
	}
	return s.Scorer.Close()
}

// NewReranker creates the HTTP reranker described by settings.
// The API key is read from the environment variable named by APIKeyEnv.
func NewReranker(settings *domain.ScoringSettings) *reranker.Scorer {
	cfg := reranker.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		RequestsPerSecond: settings.RequestsPerSecond,
		Sigmoid:           settings.Sigmoid,
	}
	if settings.TimeoutSecs > 0 {
		cfg.Timeout = time.Duration(settings.TimeoutSecs) * time.Second
	}
	if settings.APIKeyEnv != "" {
		cfg.APIKey = os.Getenv(settings.APIKeyEnv)
	}
	return reranker.New(cfg)
}

// NewEmbeddingScorer creates an embedding-similarity scorer for the ollama
// or openai provider. Fields left at the reranker defaults fall back to the
// embedding provider's own defaults.
func NewEmbeddingScorer(settings *domain.ScoringSettings) (*scoringembed.Scorer, error) {
	model := settings.Model
	if model == domain.DefaultModel {
		model = ""
	}
	baseURL := settings.BaseURL
	if baseURL == domain.DefaultBaseURL {
		baseURL = ""
	}
	var timeout time.Duration
	if settings.TimeoutSecs > 0 {
		timeout = time.Duration(settings.TimeoutSecs) * time.Second
	}

	switch settings.Provider {
	case domain.ScoringProviderOllama:
		return scoringembed.New(ollama.New(ollama.Config{
			BaseURL: baseURL,
			Model:   model,
			Timeout: timeout,
		})), nil
	case domain.ScoringProviderOpenAI:
		keyEnv := settings.APIKeyEnv
		if keyEnv == "" || keyEnv == domain.DefaultAPIKeyEnv {
			keyEnv = openai.APIKeyEnv
		}
		emb, err := openai.New(openai.Config{
			APIKey:  os.Getenv(keyEnv),
			BaseURL: baseURL,
			Model:   model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyEnv, err)
		}
		return scoringembed.New(emb), nil
	default:
		return nil, fmt.Errorf("%w: %q is not an embedding provider", domain.ErrInvalidConfiguration, settings.Provider)
	}
}

// CreateScorer creates the scorer for the configured provider without validating it.
// The auto provider resolves to the reranker.
func CreateScorer(settings *domain.ScoringSettings) (driven.Scorer, error) {
	if settings == nil {
		return mock.New(), nil
	}

	switch settings.Provider {
	case domain.ScoringProviderMock:
		return mock.New(), nil
	case domain.ScoringProviderReranker, domain.ScoringProviderAuto:
		return NewReranker(settings), nil
	case domain.ScoringProviderOllama, domain.ScoringProviderOpenAI:
		s, err := NewEmbeddingScorer(settings)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown scoring provider %q", domain.ErrInvalidConfiguration, settings.Provider)
	}
}

// CreateAndValidate creates the configured scorer and checks it is reachable.
// The reranker and embedding providers fail when the service does not answer.
// The auto provider falls back to the mock scorer with a warning.
func CreateAndValidate(ctx context.Context, settings *domain.ScoringSettings) (*Selection, error) {
	if settings == nil || settings.Provider == domain.ScoringProviderMock {
		return &Selection{Scorer: mock.New()}, nil
	}

	scorer, err := CreateScorer(settings)
	if err != nil {
		return nil, err
	}

	if settings.Provider != domain.ScoringProviderAuto {
		if err := ping(ctx, scorer); err != nil {
			scorer.Close()
			return nil, fmt.Errorf("%w: %s scorer %s unreachable (%w)",
				domain.ErrModelUnavailable, settings.Provider, scorer.Name(), err)
		}
		return &Selection{Scorer: scorer}, nil
	}

	sel, err := Select(ctx, scorer, mock.New())
	if err != nil {
		return nil, err
	}
	return sel, nil
}

// Select returns the first candidate whose Ping succeeds.
// Candidates that fail are closed and recorded as warnings.
// Fails with domain.ErrModelUnavailable when no candidate answers.
func Select(ctx context.Context, candidates ...driven.Scorer) (*Selection, error) {
	sel := &Selection{}
	for i, c := range candidates {
		if err := ping(ctx, c); err != nil {
			sel.Warnings = append(sel.Warnings, fmt.Sprintf("scorer %s unavailable: %v", c.Name(), err))
			c.Close()
			continue
		}
		sel.Scorer = c
		sel.FellBack = i > 0
		for _, rest := range candidates[i+1:] {
			rest.Close()
		}
		return sel, nil
	}
	return nil, fmt.Errorf("%w: no scorer answered", domain.ErrModelUnavailable)
}

func ping(ctx context.Context, s driven.Scorer) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.Ping(ctx)
}
