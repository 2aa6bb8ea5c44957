// Package migrations embeds the goose schema migrations for the local store.
// All SQL is kept portable between the pgx and sqlite dialects.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
