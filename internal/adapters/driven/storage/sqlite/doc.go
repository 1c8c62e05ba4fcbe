// Package sqlite provides the default, file-backed implementation of the
// SourceStore and DocumentStore ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Both stores share a single database connection:
//
//   - SourceStore: per-user sources with their watermark
//   - DocumentStore: per-user discovered files, unique on (user_id, hash)
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files; the
// applied version is recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.tgindex/data/tgindex.db
//
// # Thread Safety
//
// All operations are thread-safe. Uniqueness is enforced by the database, so
// concurrent inserts of the same file resolve to one row and one
// domain.ErrAlreadyExists.
package sqlite
