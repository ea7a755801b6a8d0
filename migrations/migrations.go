// Package migrations embeds the session store's SQL migrations.
package migrations

import "embed"

// FS holds the golang-migrate files ({version}_{title}.{up,down}.sql).
//
//go:embed *.sql
var FS embed.FS
