// Package migrations embeds the MySQL schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
