package database

import _ "embed"

// Schema is the full catalog schema produced by applying every migration.
// Tests apply it directly to in-memory databases.
//
//go:embed sqlc/schema.sql
var Schema string
