package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/config"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultFileName is used when no config path is given.
const DefaultFileName = "contextpacket.toml"

// Format identifies the on-disk configuration syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the syntax from the file extension. Unknown
// extensions are read as TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ConfigStore is a file-backed driven.ConfigStore.
// Values are held flattened under dot-notation keys ("chunking.chunk_size").
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	format   Format
	data     map[string]any
}

// NewConfigStore opens the configuration file at path.
// A missing file yields an empty store; Save creates it.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = DefaultFileName
	}

	s := &ConfigStore{
		filePath: path,
		format:   FormatForPath(path),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := config.AsString(val)
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	n, _ := config.AsInt(val)
	return n
}

// GetFloat retrieves a numeric configuration value.
func (s *ConfigStore) GetFloat(key string) (float64, bool) {
	val, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return config.AsFloat(val)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := config.AsBool(val)
	return b
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	list, _ := config.AsStringSlice(val)
	return list
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the nested form of the data (caller must hold lock).
func (s *ConfigStore) save() error {
	nested := config.Expand(s.data)

	var (
		data []byte
		err  error
	)
	switch s.format {
	case FormatYAML:
		data, err = yaml.Marshal(nested)
	default:
		data, err = toml.Marshal(nested)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create config dir: %w", domain.ErrIOFailure, err)
		}
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write config: %w", domain.ErrIOFailure, err)
	}
	return nil
}

// Load reads configuration from disk, replacing in-memory values.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.data = make(map[string]any)
			return nil
		}
		return fmt.Errorf("%w: read config: %w", domain.ErrIOFailure, err)
	}

	var loaded map[string]any
	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = toml.Unmarshal(data, &loaded)
	}
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidConfiguration, s.filePath, err)
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}
	s.data = config.Flatten(loaded)
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Format returns the syntax used for reading and writing.
func (s *ConfigStore) Format() Format {
	return s.format
}
