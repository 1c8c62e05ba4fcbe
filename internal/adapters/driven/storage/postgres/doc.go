// Package postgres implements the SourceStore and DocumentStore ports on
// PostgreSQL through the pgx database/sql driver.
//
// The schema is owned by goose migrations embedded from migrations/ and
// applied by NewStore. Repositories accept a DBTX so they run unchanged on
// a *sql.DB, a *sql.Tx or a sqlmock connection in tests.
package postgres
