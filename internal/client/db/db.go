// Package db opens the local SQLite database and applies schema migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/annagav/garderobe/internal/client/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// RunMigrations applies all embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the database at dsn, enables foreign
// key enforcement, and migrates the schema. Cascade deletes on the
// item/outfit association depend on the foreign_keys pragma, which SQLite
// keeps off by default.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	// The driver only parses query parameters on file: DSNs.
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single-writer database; one connection also keeps an in-memory DSN
	// from fanning out into independent databases.
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return sqlDB, nil
}
