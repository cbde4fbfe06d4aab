package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
)

const migrationTable = "schema_migrations"

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies (or reverts) each NNN_name.<direction>.sql file in fsys at
// most once, recording applied names in schema_migrations.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS, direction Direction) (int, error) {
	if direction != Up && direction != Down {
		return 0, fmt.Errorf("direction must be %q or %q, got %q", Up, Down, direction)
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name       VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, migrationTable))
	if err != nil {
		return 0, fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("read migration directory: %w", err)
	}

	suffix := fmt.Sprintf(".%s.sql", direction)
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	if direction == Down {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}

	ran := 0
	for _, filename := range files {
		name := strings.TrimSuffix(filename, suffix)

		var applied bool
		err := db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE name = $1)", migrationTable),
			name).Scan(&applied)
		if err != nil {
			return ran, fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied == (direction == Down) {
			if err := runMigration(ctx, db, fsys, filename, name, direction); err != nil {
				return ran, err
			}
			log.Printf("Ran migration: %s", filename)
			ran++
		}
	}

	return ran, nil
}

func runMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename, name string, direction Direction) error {
	content, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", filename, err)
	}

	return WithTransaction(ctx, db, DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", filename, err)
		}

		record := fmt.Sprintf("INSERT INTO %s (name) VALUES ($1)", migrationTable)
		if direction == Down {
			record = fmt.Sprintf("DELETE FROM %s WHERE name = $1", migrationTable)
		}
		if _, err := tx.ExecContext(ctx, record, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}

		return nil
	})
}
