// Package migrations embeds the SQL schema migrations into the binaries.
package migrations

import "embed"

// FS holds every *.sql migration file
//
//go:embed *.sql
var FS embed.FS
