package services

import (
	"fmt"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyChunkSize         = "chunking.chunk_size"
	keyOverlap           = "chunking.overlap"
	keyTokenizer         = "chunking.tokenizer"
	keyIncludeExtensions = "ingest.include_extensions"
	keyRecursive         = "ingest.recursive"
	keyWorkers           = "ingest.workers"
	keyProvider          = "scoring.provider"
	keyModel             = "scoring.model"
	keyBaseURL           = "scoring.base_url"
	keyAPIKeyEnv         = "scoring.api_key_env"
	keyBatchSize         = "scoring.batch_size"
	keyTimeoutSecs       = "scoring.timeout_secs"
	keyRequestsPerSecond = "scoring.requests_per_second"
	keySigmoid           = "scoring.sigmoid"
	keyThreshold         = "scoring.threshold"
	keyLimitLarge        = "limits.large"
	keyLimitMedium       = "limits.medium"
	keyLimitSmall        = "limits.small"
	keyOutputDir         = "output.dir"
	keyQueries           = "queries"
)

// flatKeys maps the single-level key names of earlier config files onto
// their sectioned equivalents. A sectioned key wins when both are present.
var flatKeys = map[string]string{
	keyChunkSize:         "chunk_size",
	keyOverlap:           "chunk_overlap",
	keyBatchSize:         "batch_size",
	keyLimitLarge:        "large_limit",
	keyLimitMedium:       "medium_limit",
	keyLimitSmall:        "small_limit",
	keyThreshold:         "score_threshold",
	keyModel:             "model_path",
	keyIncludeExtensions: "include_extensions",
	keyRecursive:         "recursive",
	keyOutputDir:         "output_dir",
}

// SettingsService maps configuration keys onto typed settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the current settings with defaults applied.
// Fails with domain.ErrInvalidConfiguration when the result cannot be used.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, d.Chunking.ChunkSize),
			Overlap:   s.getInt(keyOverlap, d.Chunking.Overlap),
			Tokenizer: s.getString(keyTokenizer, d.Chunking.Tokenizer),
		},
		Ingest: domain.IngestSettings{
			IncludeExtensions: s.getStringSlice(keyIncludeExtensions, d.Ingest.IncludeExtensions),
			Recursive:         s.getBool(keyRecursive, d.Ingest.Recursive),
			Workers:           s.getInt(keyWorkers, d.Ingest.Workers),
		},
		Scoring: domain.ScoringSettings{
			Provider:          domain.ScoringProvider(s.getString(keyProvider, string(d.Scoring.Provider))),
			Model:             s.getString(keyModel, d.Scoring.Model),
			BaseURL:           s.getString(keyBaseURL, d.Scoring.BaseURL),
			APIKeyEnv:         s.getString(keyAPIKeyEnv, d.Scoring.APIKeyEnv),
			BatchSize:         s.getInt(keyBatchSize, d.Scoring.BatchSize),
			TimeoutSecs:       s.getInt(keyTimeoutSecs, d.Scoring.TimeoutSecs),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, d.Scoring.RequestsPerSecond),
			Sigmoid:           s.getBool(keySigmoid, d.Scoring.Sigmoid),
		},
		Limits: domain.PacketLimits{
			Large:  s.getInt(keyLimitLarge, d.Limits.Large),
			Medium: s.getInt(keyLimitMedium, d.Limits.Medium),
			Small:  s.getInt(keyLimitSmall, d.Limits.Small),
		},
		OutputDir: s.getString(keyOutputDir, d.OutputDir),
	}

	if v, ok := s.configStore.GetFloat(s.resolve(keyThreshold)); ok {
		settings.Scoring.Threshold = &v
	}

	queries, err := s.getQueries()
	if err != nil {
		return nil, err
	}
	settings.Queries = queries

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// WriteDefaults persists the default settings.
func (s *SettingsService) WriteDefaults() error {
	d := domain.DefaultSettings()

	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, d.Chunking.ChunkSize},
		{keyOverlap, d.Chunking.Overlap},
		{keyTokenizer, d.Chunking.Tokenizer},
		{keyIncludeExtensions, d.Ingest.IncludeExtensions},
		{keyRecursive, d.Ingest.Recursive},
		{keyWorkers, d.Ingest.Workers},
		{keyProvider, d.Scoring.Provider.String()},
		{keyModel, d.Scoring.Model},
		{keyBaseURL, d.Scoring.BaseURL},
		{keyAPIKeyEnv, d.Scoring.APIKeyEnv},
		{keyBatchSize, d.Scoring.BatchSize},
		{keyTimeoutSecs, d.Scoring.TimeoutSecs},
		{keyRequestsPerSecond, d.Scoring.RequestsPerSecond},
		{keySigmoid, d.Scoring.Sigmoid},
		{keyLimitLarge, d.Limits.Large},
		{keyLimitMedium, d.Limits.Medium},
		{keyLimitSmall, d.Limits.Small},
		{keyOutputDir, d.OutputDir},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("failed to save %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// resolve returns key, or its flat alias when only the alias is set.
func (s *SettingsService) resolve(key string) string {
	if _, ok := s.configStore.Get(key); ok {
		return key
	}
	if alias, ok := flatKeys[key]; ok {
		if _, set := s.configStore.Get(alias); set {
			return alias
		}
	}
	return key
}

// getString retrieves a string setting with a default value.
func (s *SettingsService) getString(key, defaultVal string) string {
	key = s.resolve(key)
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt retrieves an integer setting with a default value.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	key = s.resolve(key)
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

// getFloat retrieves a float setting with a default value.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	key = s.resolve(key)
	if val, ok := s.configStore.GetFloat(key); ok {
		return val
	}
	return defaultVal
}

// getBool retrieves a boolean setting with a default value.
func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	key = s.resolve(key)
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getStringSlice retrieves a string slice setting with a default value.
func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	key = s.resolve(key)
	if val := s.configStore.GetStringSlice(key); val != nil {
		return val
	}
	return defaultVal
}

// getQueries reads the evaluation query list. Each entry is a table with
// id, query and optional type.
func (s *SettingsService) getQueries() ([]domain.Query, error) {
	raw, ok := s.configStore.Get(keyQueries)
	if !ok || raw == nil {
		return nil, nil
	}

	var entries []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		entries = v
	case []any:
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("queries[%d] is not a table: %w", i, domain.ErrInvalidConfiguration)
			}
			entries = append(entries, m)
		}
	default:
		return nil, fmt.Errorf("queries must be a list of tables: %w", domain.ErrInvalidConfiguration)
	}

	queries := make([]domain.Query, 0, len(entries))
	for i, m := range entries {
		q := domain.Query{
			ID:   stringField(m, "id"),
			Text: stringField(m, "query"),
			Type: stringField(m, "type"),
		}
		if q.ID == "" || q.Text == "" {
			return nil, fmt.Errorf("queries[%d] needs id and query: %w", i, domain.ErrInvalidConfiguration)
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
