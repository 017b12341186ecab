// Command generate_schema applies the embedded catalog migrations to an
// in-memory database and writes the resulting DDL to sqlc/schema.sql, the
// input sqlc reads when regenerating queries.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pictier/internal/database"
	"pictier/internal/database/migrations"
)

const schemaHeader = `-- This file is auto-generated from migration files.
-- DO NOT EDIT MANUALLY. Run 'go generate ./internal/database' to regenerate.
-- Source: internal/database/migrations/files/*.sql

`

func main() {
	out := filepath.Join("internal", "database", "sqlc", "schema.sql")
	if err := run(out); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("generated %s from migrations\n", out)
}

func run(out string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	stmts, err := catalogDDL(db)
	if err != nil {
		return err
	}
	return os.WriteFile(out, []byte(schemaHeader+strings.Join(stmts, "\n\n")+"\n"), 0o644)
}

// catalogDDL returns the CREATE statements for the photos and operations
// tables and their indexes, tables first. The migrate bookkeeping table and
// SQLite internals are left out.
func catalogDDL(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY type = 'index', name`)
	if err != nil {
		return nil, fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, fmt.Errorf("scanning statement: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}
