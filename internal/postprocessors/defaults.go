package postprocessors

import (
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/postprocessors/chunker"
)

// DefaultStrategy is the chunk strategy used when none is configured.
const DefaultStrategy = "sliding_window"

// RegisterDefaults registers all built-in strategies with the registry.
// Call this during application initialisation.
func RegisterDefaults(r *Registry) {
	r.Register(DefaultStrategy, buildSlidingWindow)
}

// buildSlidingWindow creates a sliding-window chunker from generic config.
// Supported config keys:
//   - chunk_size (int): Tokens per window (default: 512)
//   - overlap (int): Tokens shared by adjacent windows (default: 256)
//
// Invalid geometry is rejected by the chunker itself.
func buildSlidingWindow(tokenizer driven.Tokenizer, cfg map[string]any) (driven.ChunkStrategy, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	c, err := chunker.New(tokenizer, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/YAML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
