// Command generate_schema migrates an in-memory catalog to the latest
// version and writes the resulting DDL to sqlc/schema.sql, which is embedded
// for tests and read by sqlc.
//
// With -check it compares instead of writing and exits 1 when the committed
// schema is stale.
package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"findv/internal/database"
	"findv/internal/database/migrations"
)

const header = `-- This file is auto-generated from migration files.
-- DO NOT EDIT MANUALLY. Run 'go generate ./internal/database' to regenerate.
-- Source: internal/database/migrations/files/*.sql

`

func main() {
	out := flag.String("out", filepath.Join("internal", "database", "sqlc", "schema.sql"), "schema file to write")
	check := flag.Bool("check", false, "fail if the schema file is out of date instead of writing it")
	flag.Parse()

	schema, err := migratedSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}

	if *check {
		current, err := os.ReadFile(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
			os.Exit(1)
		}
		if !bytes.Equal(current, []byte(schema)) {
			fmt.Fprintf(os.Stderr, "%s is out of date with the migrations\n", *out)
			os.Exit(1)
		}
		return
	}

	if err := os.WriteFile(*out, []byte(schema), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: writing %s: %v\n", *out, err)
		os.Exit(1)
	}

	version, err := migrations.LatestVersion()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("generated %s (schema version %d)\n", *out, version)
}

func migratedSchema() (string, error) {
	db, err := database.OpenConnection(database.MemoryPath)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return "", fmt.Errorf("migrating: %w", err)
	}
	return extractSchema(db)
}

// extractSchema returns the CREATE statements for every user table and
// index, tables first, skipping SQLite internals and the migration
// bookkeeping table.
func extractSchema(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY CASE type WHEN 'table' THEN 1 ELSE 2 END, name
	`)
	if err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString(header)
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning statement: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString("\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	return b.String(), nil
}
