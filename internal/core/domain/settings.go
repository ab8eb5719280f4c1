package domain

import (
	"fmt"
	"slices"
)

const unknownDescription = "Unknown"

// ScoringProvider selects the scoring collaborator.
type ScoringProvider string

// Available scoring providers.
const (
	// ScoringProviderMock uses the deterministic hash scorer.
	ScoringProviderMock ScoringProvider = "mock"

	// ScoringProviderReranker calls an HTTP reranker service.
	ScoringProviderReranker ScoringProvider = "reranker"

	// ScoringProviderAuto tries the reranker and falls back to the mock scorer.
	ScoringProviderAuto ScoringProvider = "auto"

	// ScoringProviderOllama scores by embedding similarity through Ollama.
	ScoringProviderOllama ScoringProvider = "ollama"

	// ScoringProviderOpenAI scores by embedding similarity through the OpenAI API.
	ScoringProviderOpenAI ScoringProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p ScoringProvider) IsValid() bool {
	switch p {
	case ScoringProviderMock, ScoringProviderReranker, ScoringProviderAuto,
		ScoringProviderOllama, ScoringProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p ScoringProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p ScoringProvider) Description() string {
	switch p {
	case ScoringProviderMock:
		return "Mock (deterministic hash scores)"
	case ScoringProviderReranker:
		return "Reranker (HTTP cross-encoder service)"
	case ScoringProviderAuto:
		return "Auto (reranker, falling back to mock)"
	case ScoringProviderOllama:
		return "Ollama (embedding similarity)"
	case ScoringProviderOpenAI:
		return "OpenAI (embedding similarity)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings configures the sliding-window chunker.
type ChunkingSettings struct {
	// ChunkSize is the window width in tokens.
	ChunkSize int

	// Overlap is the number of tokens shared by adjacent windows.
	// Must be smaller than ChunkSize.
	Overlap int

	// Tokenizer names the registered tokenizer.
	Tokenizer string
}

// IngestSettings configures the corpus walk.
type IngestSettings struct {
	// IncludeExtensions lists lowercase extensions without dots.
	IncludeExtensions []string

	// Recursive descends into subdirectories when true.
	Recursive bool

	// Workers bounds the parse and chunk worker pool.
	Workers int
}

// ScoringSettings configures the scoring collaborator.
type ScoringSettings struct {
	Provider          ScoringProvider
	Model             string
	BaseURL           string
	APIKeyEnv         string
	BatchSize         int
	TimeoutSecs       int
	RequestsPerSecond float64

	// Sigmoid maps raw reranker logits into (0, 1).
	Sigmoid bool

	// Threshold filters packet candidates when set.
	Threshold *float64
}

// PacketLimits are the token budgets of the large, medium and small context packets.
type PacketLimits struct {
	Large  int
	Medium int
	Small  int
}

// Named returns the limits keyed by packet name.
func (l PacketLimits) Named() map[string]int {
	return map[string]int{"large": l.Large, "medium": l.Medium, "small": l.Small}
}

// Settings is the complete runtime configuration.
type Settings struct {
	Chunking  ChunkingSettings
	Ingest    IngestSettings
	Scoring   ScoringSettings
	Limits    PacketLimits
	OutputDir string
	Queries   []Query
}

// Default configuration values.
const (
	DefaultChunkSize   = 512
	DefaultOverlap     = 256
	DefaultTokenizer   = "cl100k_base"
	DefaultBatchSize   = 32
	DefaultWorkers     = 4
	DefaultModel       = "mixedbread-ai/mxbai-rerank-base-v2"
	DefaultBaseURL     = "http://localhost:8080"
	DefaultAPIKeyEnv   = "HUGGINGFACE_HUB_TOKEN"
	DefaultTimeoutSecs = 60
)

// DefaultIncludeExtensions returns the extensions ingested by default.
func DefaultIncludeExtensions() []string {
	return []string{
		"txt", "md", "markdown", "html", "htm", "pdf",
		"py", "c", "cpp", "h", "hpp", "rs", "swift",
	}
}

// DefaultSettings returns the settings used when no configuration is present.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultOverlap,
			Tokenizer: DefaultTokenizer,
		},
		Ingest: IngestSettings{
			IncludeExtensions: DefaultIncludeExtensions(),
			Recursive:         true,
			Workers:           DefaultWorkers,
		},
		Scoring: ScoringSettings{
			Provider:    ScoringProviderMock,
			Model:       DefaultModel,
			BaseURL:     DefaultBaseURL,
			APIKeyEnv:   DefaultAPIKeyEnv,
			BatchSize:   DefaultBatchSize,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		Limits: PacketLimits{
			Large:  32000,
			Medium: 16000,
			Small:  8000,
		},
		OutputDir: ".",
	}
}

// Validate checks the settings before any document is processed.
func (s *Settings) Validate() error {
	c := s.Chunking
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d: %w", c.ChunkSize, ErrInvalidConfiguration)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("overlap must not be negative, got %d: %w", c.Overlap, ErrInvalidConfiguration)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("overlap (%d) must be smaller than chunk size (%d): %w",
			c.Overlap, c.ChunkSize, ErrInvalidConfiguration)
	}
	if s.Scoring.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d: %w", s.Scoring.BatchSize, ErrInvalidConfiguration)
	}
	if !s.Scoring.Provider.IsValid() {
		return fmt.Errorf("unknown scoring provider %q: %w", s.Scoring.Provider, ErrInvalidConfiguration)
	}
	if s.Scoring.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %v: %w",
			s.Scoring.RequestsPerSecond, ErrInvalidConfiguration)
	}
	if s.Ingest.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d: %w", s.Ingest.Workers, ErrInvalidConfiguration)
	}
	return nil
}

// Includes reports whether a lowercase extension is ingested.
func (s *IngestSettings) Includes(ext string) bool {
	return slices.Contains(s.IncludeExtensions, ext)
}
