package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/config/file"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	want := domain.DefaultSettings()
	assert.Equal(t, &want, settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"chunking": map[string]any{"chunk_size": int64(128), "overlap": int64(32), "tokenizer": "runes"},
		"ingest": map[string]any{
			"include_extensions": []any{"txt", "html"},
			"recursive":          false,
			"workers":            int64(2),
		},
		"scoring": map[string]any{
			"provider":            "reranker",
			"base_url":            "http://rerank:9000",
			"batch_size":          int64(8),
			"requests_per_second": int64(3),
			"sigmoid":             true,
			"threshold":           0.4,
		},
		"limits": map[string]any{"large": int64(1000), "medium": int64(500), "small": int64(100)},
		"output": map[string]any{"dir": "out"},
	})

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, 128, settings.Chunking.ChunkSize)
	assert.Equal(t, 32, settings.Chunking.Overlap)
	assert.Equal(t, "runes", settings.Chunking.Tokenizer)
	assert.Equal(t, []string{"txt", "html"}, settings.Ingest.IncludeExtensions)
	assert.False(t, settings.Ingest.Recursive)
	assert.Equal(t, 2, settings.Ingest.Workers)
	assert.Equal(t, domain.ScoringProviderReranker, settings.Scoring.Provider)
	assert.Equal(t, "http://rerank:9000", settings.Scoring.BaseURL)
	assert.Equal(t, domain.DefaultModel, settings.Scoring.Model)
	assert.Equal(t, 8, settings.Scoring.BatchSize)
	assert.InDelta(t, 3.0, settings.Scoring.RequestsPerSecond, 1e-12)
	assert.True(t, settings.Scoring.Sigmoid)
	require.NotNil(t, settings.Scoring.Threshold)
	assert.InDelta(t, 0.4, *settings.Scoring.Threshold, 1e-12)
	assert.Equal(t, domain.PacketLimits{Large: 1000, Medium: 500, Small: 100}, settings.Limits)
	assert.Equal(t, "out", settings.OutputDir)
}

func TestSettingsService_Get_Queries(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"queries": []any{
			map[string]any{"id": "q1", "query": "how are chunks cited", "type": "factual"},
			map[string]any{"id": "q2", "query": "overlap"},
		},
	})

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, []domain.Query{
		{ID: "q1", Text: "how are chunks cited", Type: "factual"},
		{ID: "q2", Text: "overlap"},
	}, settings.Queries)
}

func TestSettingsService_Get_InvalidQueries(t *testing.T) {
	tests := []struct {
		name    string
		queries any
	}{
		{"not a list", "q1"},
		{"entry not a table", []any{"q1"}},
		{"missing text", []any{map[string]any{"id": "q1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore(map[string]any{"queries": tt.queries})
			_, err := NewSettingsService(store).Get()
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestSettingsService_Get_ValidatesResult(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"chunking": map[string]any{"chunk_size": 10, "overlap": 10},
	})

	_, err := NewSettingsService(store).Get()

	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSettingsService_WriteDefaults(t *testing.T) {
	for _, name := range []string{"contextpacket.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			store, err := file.NewConfigStore(path)
			require.NoError(t, err)

			require.NoError(t, NewSettingsService(store).WriteDefaults())

			reloaded, err := file.NewConfigStore(path)
			require.NoError(t, err)
			settings, err := NewSettingsService(reloaded).Get()
			require.NoError(t, err)

			want := domain.DefaultSettings()
			assert.Equal(t, &want, settings)
		})
	}
}

func TestSettingsService_Get_FlatKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`chunk_size: 128
chunk_overlap: 32
batch_size: 8
large_limit: 1000
medium_limit: 500
small_limit: 100
score_threshold: 0.5
model_path: local/reranker
include_extensions: [txt]
recursive: false
output_dir: out
`), 0o600))
	store, err := file.NewConfigStore(path)
	require.NoError(t, err)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, 128, settings.Chunking.ChunkSize)
	assert.Equal(t, 32, settings.Chunking.Overlap)
	assert.Equal(t, 8, settings.Scoring.BatchSize)
	assert.Equal(t, domain.PacketLimits{Large: 1000, Medium: 500, Small: 100}, settings.Limits)
	require.NotNil(t, settings.Scoring.Threshold)
	assert.InDelta(t, 0.5, *settings.Scoring.Threshold, 1e-12)
	assert.Equal(t, "local/reranker", settings.Scoring.Model)
	assert.Equal(t, []string{"txt"}, settings.Ingest.IncludeExtensions)
	assert.False(t, settings.Ingest.Recursive)
	assert.Equal(t, "out", settings.OutputDir)
}

func TestSettingsService_Get_SectionedKeyWinsOverFlat(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"chunk_size": int64(64),
		"chunking":   map[string]any{"chunk_size": int64(256)},
	})

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, 256, settings.Chunking.ChunkSize)
}
