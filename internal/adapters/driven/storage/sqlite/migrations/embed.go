// Package migrations holds the schema of the SQLite store. Scripts are
// named NNN_name.up.sql and applied in version order on open.
package migrations

import "embed"

// FS holds the migration scripts.
//
//go:embed *.sql
var FS embed.FS
