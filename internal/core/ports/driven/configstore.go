package driven

// ConfigStore is the key/value store behind the settings service.
// Keys use dot notation ("telegram.api_id"); the typed getters return the
// zero value for missing keys or values of another type.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64

	// Set stores a value and persists it immediately.
	Set(key string, value any) error
}
