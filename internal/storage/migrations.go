package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS datasets (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					source TEXT,
					row_count INTEGER NOT NULL DEFAULT 0,
					imported_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_datasets_imported_at ON datasets(imported_at)`,
				rowTableDDL(),
				`CREATE INDEX idx_dataset_rows_dataset ON dataset_rows(dataset_id, line)`,
			}
			return execAll(tx, queries)
		},
	},
	{
		Version:     2,
		Description: "Keep normalization diagnostics with each dataset",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE datasets ADD COLUMN corrected_count INTEGER NOT NULL DEFAULT 0`,
				`CREATE TABLE IF NOT EXISTS dataset_warnings (
					dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					message TEXT NOT NULL,
					PRIMARY KEY (dataset_id, position)
				)`,
			}
			return execAll(tx, queries)
		},
	},
}

// rowTableDDL lays out one column per canonical field.
func rowTableDDL() string {
	var b strings.Builder
	b.WriteString(`CREATE TABLE IF NOT EXISTS dataset_rows (
					dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
					line INTEGER NOT NULL`)
	for _, f := range model.StringFields {
		fmt.Fprintf(&b, ",\n\t\t\t\t\t%s TEXT NOT NULL DEFAULT ''", f)
	}
	for _, f := range model.NumericFields {
		fmt.Fprintf(&b, ",\n\t\t\t\t\t%s REAL NOT NULL DEFAULT 0", f)
	}
	b.WriteString(",\n\t\t\t\t\tPRIMARY KEY (dataset_id, line)\n\t\t\t\t)")
	return b.String()
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", mapSQLiteError(err))
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
