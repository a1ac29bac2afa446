package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects the schema changes registered by the files of this
// package; each file name carries its version.
var Migrations = migrate.NewMigrations()
