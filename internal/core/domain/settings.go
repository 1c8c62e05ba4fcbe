package domain

import "time"

const unknownDescription = "Unknown"

// StorageBackend selects the document store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite is an embedded SQLite database in the data directory.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePostgres is a PostgreSQL server.
	StoragePostgres StorageBackend = "postgres"

	// StorageMongo is a MongoDB server.
	StorageMongo StorageBackend = "mongo"

	// StorageMemory keeps everything in process memory. Nothing survives a restart.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StoragePostgres, StorageMongo, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (embedded, single user)"
	case StoragePostgres:
		return "PostgreSQL (server)"
	case StorageMongo:
		return "MongoDB (server)"
	case StorageMemory:
		return "In-memory (testing only)"
	default:
		return unknownDescription
	}
}

// HashMode selects the deduplication key strategy.
type HashMode string

// Available hash modes.
const (
	// HashByMessage keys files by chat, message id and file name.
	HashByMessage HashMode = "message"

	// HashByContent keys files by platform file id, size and file name, so a
	// file forwarded to several chats is indexed once.
	HashByContent HashMode = "content"
)

// IsValid returns true if the hash mode is recognised.
func (m HashMode) IsValid() bool {
	return m == HashByMessage || m == HashByContent
}

// String returns the string representation.
func (m HashMode) String() string {
	return string(m)
}

// TelegramSettings configures the platform session and the bot.
type TelegramSettings struct {
	// APIID and APIHash identify the application to Telegram.
	APIID   int
	APIHash string

	// SessionPath is the bolt file holding the authorized user session.
	SessionPath string

	// BotToken enables the bot command adapter when set.
	BotToken string

	// RequestsPerSecond throttles platform calls made by the session.
	RequestsPerSecond float64
}

// IsConfigured returns true if the user session can be started.
func (t TelegramSettings) IsConfigured() bool {
	return t.APIID > 0 && t.APIHash != ""
}

// StorageSettings selects and configures the document store.
type StorageSettings struct {
	Backend       StorageBackend
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
}

// IndexingSettings tunes backfill passes.
type IndexingSettings struct {
	// WindowLimit bounds a first or incremental pass.
	WindowLimit int

	// ReindexWindowLimit bounds a user-requested reindex.
	ReindexWindowLimit int

	// PageSize is the number of messages requested per history call.
	PageSize int

	// Concurrency bounds how many sources are indexed at once by IndexAll.
	Concurrency int

	// HashMode selects the deduplication key.
	HashMode HashMode

	// CatchUpInterval is how often the listener re-runs incremental passes
	// over every source to pick up messages it missed. Zero disables it.
	CatchUpInterval time.Duration
}

// Settings holds all application settings.
type Settings struct {
	Telegram TelegramSettings
	Storage  StorageSettings
	Indexing IndexingSettings
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Telegram: TelegramSettings{
			RequestsPerSecond: 2,
		},
		Storage: StorageSettings{
			Backend:       StorageSQLite,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "telegram_search_bot",
		},
		Indexing: IndexingSettings{
			WindowLimit:        300,
			ReindexWindowLimit: 500,
			PageSize:           100,
			Concurrency:        2,
			HashMode:           HashByMessage,
		},
	}
}
