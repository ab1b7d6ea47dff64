// Package migrations embeds the PostgreSQL schema of the analytics store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
