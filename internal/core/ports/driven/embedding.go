package driven

import "context"

// Embedder turns text into vectors for the embedding scorer.
//
// Implementations include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type Embedder interface {
	// EmbedBatch returns one vector per text, in input order.
	// Fails with domain.ErrModelUnavailable or domain.ErrScoringFailure.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
