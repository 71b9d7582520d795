// Package migrations embeds the Postgres schema for the lead archive sink.
package migrations

import "embed"

// FS holds the numbered golang-migrate files.
//
//go:embed *.sql
var FS embed.FS
