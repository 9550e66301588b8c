// Package migrations holds the ledger schema as numbered golang-migrate
// files, embedded so the binary can migrate without a checkout.
package migrations

import "embed"

//go:embed *.up.sql *.down.sql
var FS embed.FS

// Version is the schema version the ledger code is written against.
// db.Migrate moves the database to exactly this version.
const Version uint = 1
