package driving

import "github.com/custodia-labs/contextpacket/internal/core/domain"

// SettingsService exposes typed configuration.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// WriteDefaults persists the default settings.
	WriteDefaults() error
}
