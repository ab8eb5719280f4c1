// Package reranker provides a scorer backed by an HTTP cross-encoder service.
//
// The service speaks the common rerank API:
//
//	POST {base}/v1/rerank  {"model": m, "query": q, "documents": [...]}
//	200 {"results": [{"index": i, "relevance_score": s}, ...]}
//
// Results may arrive in any order; they are mapped back to input order by index.
package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.Scorer = (*Scorer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = domain.DefaultBaseURL
	DefaultPath    = "/v1/rerank"
	DefaultModel   = domain.DefaultModel
	DefaultTimeout = 60 * time.Second
)

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// Config holds configuration for the reranker scorer.
type Config struct {
	// BaseURL is the service base URL (default: http://localhost:8080).
	BaseURL string

	// Path is the rerank endpoint path (default: /v1/rerank).
	Path string

	// Model is the reranker model name sent with each request.
	Model string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond limits the request rate; 0 means unlimited.
	RequestsPerSecond float64

	// Sigmoid maps raw logits into (0, 1).
	Sigmoid bool

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Scorer scores chunks through an HTTP reranker.
type Scorer struct {
	client   *http.Client
	endpoint string
	model    string
	apiKey   string
	sigmoid  bool
	limiter  *rate.Limiter
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

// New creates a reranker scorer.
func New(cfg Config) *Scorer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	s := &Scorer{
		client:   client,
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + cfg.Path,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		sigmoid:  cfg.Sigmoid,
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s
}

// Name returns the model name.
func (s *Scorer) Name() string {
	return s.model
}

// ScoreBatch scores chunk texts against the query in one request.
func (s *Scorer) ScoreBatch(ctx context.Context, query string, chunks []domain.Chunk) ([]float64, error) {
	if len(chunks) == 0 {
		return []float64{}, nil
	}

	docs := make([]string, len(chunks))
	for i, c := range chunks {
		docs[i] = c.Text
	}

	results, err := s.rerank(ctx, query, docs)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(chunks))
	seen := make([]bool, len(chunks))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(chunks) {
			return nil, fmt.Errorf("%w: result index %d out of range [0, %d)", domain.ErrScoringFailure, r.Index, len(chunks))
		}
		if seen[r.Index] {
			return nil, fmt.Errorf("%w: duplicate result index %d", domain.ErrScoringFailure, r.Index)
		}
		seen[r.Index] = true

		score := r.RelevanceScore
		if s.sigmoid {
			score = Sigmoid(score)
		}
		scores[r.Index] = score
	}
	if len(results) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d scores for %d chunks", domain.ErrScoringFailure, len(results), len(chunks))
	}

	return scores, nil
}

func (s *Scorer) rerank(ctx context.Context, query string, docs []string) ([]rerankResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	jsonBody, err := json.Marshal(rerankRequest{Model: s.model, Query: query, Documents: docs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: reranker request: %w", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrScoringFailure, err)
	}
	return rerankResp.Results, nil
}

// statusError classifies a non-200 response. Auth, missing model and
// overload statuses mean the model cannot be used at all.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))

	kind := domain.ErrScoringFailure
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		kind = domain.ErrModelUnavailable
	}
	return fmt.Errorf("%w: reranker error (status %d): %s", kind, resp.StatusCode, msg)
}

// Ping sends a one-document request to check the service and model.
func (s *Scorer) Ping(ctx context.Context) error {
	results, err := s.rerank(ctx, "ping", []string{"ping"})
	if err != nil {
		return err
	}
	if len(results) != 1 {
		return fmt.Errorf("%w: ping returned %d results", domain.ErrModelUnavailable, len(results))
	}
	return nil
}

// Close releases resources.
func (s *Scorer) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Sigmoid maps a logit into (0, 1).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// IsUnavailable reports whether err means the model could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrModelUnavailable)
}
