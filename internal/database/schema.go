package database

import _ "embed"

// Schema is the catalog schema as produced by the migrations. Tests apply it
// directly to skip migration bookkeeping.
//
//go:embed sqlc/schema.sql
var Schema string
