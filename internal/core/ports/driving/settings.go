package driving

import "github.com/custodia-labs/tgindex/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, defaults filled in.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// Validate checks the settings needed to open the session and the store.
	Validate() error

	// Set parses and stores one dot-notation key.
	Set(key, value string) error

	// Keys lists the known keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
