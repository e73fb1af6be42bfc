// Package migrations embeds the sqlite schema for the invitation ledger.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
