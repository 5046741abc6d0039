// Package migrations embeds the goose SQL migrations for the ledger and catalog tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
