package postprocessors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/postprocessors/chunker"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(_ driven.Tokenizer, _ map[string]any) (driven.ChunkStrategy, error) {
		return nil, nil
	})

	if !r.Has("test") {
		t.Error("expected 'test' to be registered")
	}
	if r.Has("other") {
		t.Error("expected 'other' to be unregistered")
	}
}

func TestRegistry_Build_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("missing", byteTokenizer{}, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestRegistry_Build_BuilderError(t *testing.T) {
	r := NewRegistry()
	want := errors.New("boom")
	r.Register("broken", func(_ driven.Tokenizer, _ map[string]any) (driven.ChunkStrategy, error) {
		return nil, want
	})

	_, err := r.Build("broken", byteTokenizer{}, nil)

	assert.ErrorIs(t, err, want)
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", nil)
	r.Register("alpha", nil)

	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	require.True(t, r.Has(DefaultStrategy))

	t.Run("defaults when config is empty", func(t *testing.T) {
		s, err := r.Build(DefaultStrategy, byteTokenizer{}, nil)
		require.NoError(t, err)

		c, ok := s.(*chunker.Chunker)
		require.True(t, ok)
		assert.Equal(t, 512, c.ChunkSize())
		assert.Equal(t, 256, c.Overlap())
	})

	t.Run("reads numeric types from config", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  map[string]any
		}{
			{"int", map[string]any{"chunk_size": 100, "overlap": 20}},
			{"int64", map[string]any{"chunk_size": int64(100), "overlap": int64(20)}},
			{"float64", map[string]any{"chunk_size": float64(100), "overlap": float64(20)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, err := r.Build(DefaultStrategy, byteTokenizer{}, tt.cfg)
				require.NoError(t, err)
				c := s.(*chunker.Chunker)
				assert.Equal(t, 100, c.ChunkSize())
				assert.Equal(t, 20, c.Overlap())
			})
		}
	})

	t.Run("rejects invalid geometry", func(t *testing.T) {
		s, err := r.Build(DefaultStrategy, byteTokenizer{}, map[string]any{"chunk_size": 10, "overlap": 10})
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		assert.Nil(t, s)
	})
}
