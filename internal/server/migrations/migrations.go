// Package migrations embeds the goose SQL migrations for the default
// credential-store schema. Deployments that remap table or column names via
// the schema package are expected to manage the renamed schema themselves.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
