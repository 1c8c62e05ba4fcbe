package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAPIID             = "telegram.api_id"
	keyAPIHash           = "telegram.api_hash"
	keySessionPath       = "telegram.session_path"
	keyBotToken          = "telegram.bot_token"
	keyRequestsPerSecond = "telegram.requests_per_second"
	keyStorageBackend    = "storage.backend"
	keyPostgresDSN       = "storage.postgres_dsn"
	keyMongoURI          = "storage.mongo_uri"
	keyMongoDatabase     = "storage.mongo_database"
	keyWindowLimit       = "indexing.window_limit"
	keyReindexWindow     = "indexing.reindex_window_limit"
	keyPageSize          = "indexing.page_size"
	keyConcurrency       = "indexing.concurrency"
	keyHashMode          = "indexing.hash_mode"
	keyCatchUpInterval   = "indexing.catch_up_interval"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Telegram: domain.TelegramSettings{
			APIID:             s.configStore.GetInt(keyAPIID),
			APIHash:           s.configStore.GetString(keyAPIHash),
			SessionPath:       s.configStore.GetString(keySessionPath), // empty means <data-dir>/session.db
			BotToken:          s.configStore.GetString(keyBotToken),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Telegram.RequestsPerSecond),
		},
		Storage: domain.StorageSettings{
			Backend:       s.getBackend(defaults.Storage.Backend),
			PostgresDSN:   s.configStore.GetString(keyPostgresDSN),
			MongoURI:      s.getString(keyMongoURI, defaults.Storage.MongoURI),
			MongoDatabase: s.getString(keyMongoDatabase, defaults.Storage.MongoDatabase),
		},
		Indexing: domain.IndexingSettings{
			WindowLimit:        s.getInt(keyWindowLimit, defaults.Indexing.WindowLimit),
			ReindexWindowLimit: s.getInt(keyReindexWindow, defaults.Indexing.ReindexWindowLimit),
			PageSize:           s.getInt(keyPageSize, defaults.Indexing.PageSize),
			Concurrency:        s.getInt(keyConcurrency, defaults.Indexing.Concurrency),
			HashMode:           s.getHashMode(defaults.Indexing.HashMode),
			CatchUpInterval:    s.getDuration(keyCatchUpInterval, defaults.Indexing.CatchUpInterval),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyAPIID, settings.Telegram.APIID},
		{keyAPIHash, settings.Telegram.APIHash},
		{keySessionPath, settings.Telegram.SessionPath},
		{keyBotToken, settings.Telegram.BotToken},
		{keyRequestsPerSecond, settings.Telegram.RequestsPerSecond},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyPostgresDSN, settings.Storage.PostgresDSN},
		{keyMongoURI, settings.Storage.MongoURI},
		{keyMongoDatabase, settings.Storage.MongoDatabase},
		{keyWindowLimit, settings.Indexing.WindowLimit},
		{keyReindexWindow, settings.Indexing.ReindexWindowLimit},
		{keyPageSize, settings.Indexing.PageSize},
		{keyConcurrency, settings.Indexing.Concurrency},
		{keyHashMode, settings.Indexing.HashMode.String()},
		{keyCatchUpInterval, settings.Indexing.CatchUpInterval.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks the settings needed to open the session and the store.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Telegram.IsConfigured() {
		return fmt.Errorf("%w: %s and %s must be set", domain.ErrInvalidInput, keyAPIID, keyAPIHash)
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}
	if settings.Storage.Backend == domain.StoragePostgres && settings.Storage.PostgresDSN == "" {
		return fmt.Errorf("%w: %s must be set for the postgres backend", domain.ErrInvalidInput, keyPostgresDSN)
	}
	return nil
}

// Keys returns the settings keys in display order.
func (s *SettingsService) Keys() []string {
	return []string{
		keyAPIID, keyAPIHash, keySessionPath, keyBotToken, keyRequestsPerSecond,
		keyStorageBackend, keyPostgresDSN, keyMongoURI, keyMongoDatabase,
		keyWindowLimit, keyReindexWindow, keyPageSize, keyConcurrency, keyHashMode,
		keyCatchUpInterval,
	}
}

// Set parses value for a known key and persists it.
func (s *SettingsService) Set(key, value string) error {
	var stored any
	switch key {
	case keyAPIID, keyWindowLimit, keyReindexWindow, keyPageSize, keyConcurrency:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case keyRequestsPerSecond:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyHashMode:
		if !domain.HashMode(value).IsValid() {
			return fmt.Errorf("%w: unknown hash mode %q", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyCatchUpInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a duration such as 15m", domain.ErrInvalidInput, key)
		}
		stored = d.String()
	case keyAPIHash, keySessionPath, keyBotToken, keyPostgresDSN, keyMongoURI, keyMongoDatabase:
		stored = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getDuration reads a duration string. Unset or malformed values use the default.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

// getBackend returns the configured backend verbatim so Validate can
// reject a typo instead of silently falling back.
func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	return domain.StorageBackend(val)
}

func (s *SettingsService) getHashMode(defaultVal domain.HashMode) domain.HashMode {
	mode := domain.HashMode(s.configStore.GetString(keyHashMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
