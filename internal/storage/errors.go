package storage

import (
	"errors"
	"fmt"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/mattn/go-sqlite3"
)

// mapSQLiteError wraps driver errors with the matching common sentinel so
// callers can use errors.Is without importing the driver.
func mapSQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch {
	case sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey,
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %w", common.ErrDuplicateEntry, err)
	case sqliteErr.Code == sqlite3.ErrCorrupt, sqliteErr.Code == sqlite3.ErrNotADB:
		return fmt.Errorf("%w: %w", common.ErrDatabaseCorrupted, err)
	default:
		return err
	}
}
