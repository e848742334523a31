package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBackupExists is returned when the backup destination already exists.
var ErrBackupExists = errors.New("backup destination already exists")

// Backup writes a consistent copy of the database to destPath using VACUUM INTO.
func (s *SQLiteStorage) Backup(ctx context.Context, destPath string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(destPath, "destPath"); err != nil {
		return "", err
	}

	dest, err := filepath.Abs(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve backup path: %w", err)
	}
	if strings.ContainsAny(dest, `'";`) {
		return "", fmt.Errorf("invalid backup path: contains forbidden characters")
	}
	if _, statErr := os.Stat(dest); statErr == nil {
		return "", fmt.Errorf("%w: %s", ErrBackupExists, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// #nosec G201 - dest is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}
	return dest, nil
}
