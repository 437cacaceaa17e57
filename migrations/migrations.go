// Package migrations embeds the SQL schema applied by cmd/migrate.
package migrations

import "embed"

// Files holds the numbered migration scripts, applied in name order.
//
//go:embed *.sql
var Files embed.FS
