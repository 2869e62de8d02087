package migrations

import "embed"

// FS contains embedded SQLite migrations for achievement storage.
//
//go:embed *.sql
var FS embed.FS
