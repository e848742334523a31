package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/google/uuid"
)

// rowColumns is the dataset_rows column order used for inserts and selects.
var rowColumns = func() []string {
	cols := make([]string, 0, len(model.StringFields)+len(model.NumericFields))
	for _, f := range model.StringFields {
		cols = append(cols, string(f))
	}
	for _, f := range model.NumericFields {
		cols = append(cols, string(f))
	}
	return cols
}()

// SaveDataset stores a dataset with its rows and warnings in one transaction. An
// empty ID is filled with a new UUID and a zero ImportedAt with the current time.
func (s *SQLiteStorage) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDataset(ds); err != nil {
		return err
	}

	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	if ds.ImportedAt.IsZero() {
		ds.ImportedAt = time.Now().UTC()
	}
	ds.RowCount = len(ds.Rows)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO datasets (id, name, source, row_count, corrected_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Name, ds.Source, ds.RowCount, ds.CorrectedCount, ds.ImportedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dataset: %w", mapSQLiteError(err))
	}

	if err := insertRows(ctx, tx, ds.ID, ds.Rows); err != nil {
		return err
	}
	if err := insertWarnings(ctx, tx, ds.ID, ds.Warnings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, datasetID string, rows []model.CanonicalRow) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(rowColumns)+2), ", ")
	query := fmt.Sprintf("INSERT INTO dataset_rows (dataset_id, line, %s) VALUES (%s)",
		strings.Join(rowColumns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, 0, len(rowColumns)+2)
	for i, row := range rows {
		args = append(args[:0], datasetID, i)
		for _, f := range model.StringFields {
			args = append(args, row.Text(f))
		}
		for _, f := range model.NumericFields {
			args = append(args, row.Amount(f))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return nil
}

func insertWarnings(ctx context.Context, tx *sql.Tx, datasetID string, warnings []string) error {
	for i, msg := range warnings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO dataset_warnings (dataset_id, position, message) VALUES (?, ?, ?)`,
			datasetID, i, msg)
		if err != nil {
			return fmt.Errorf("failed to insert warning %d: %w", i, err)
		}
	}
	return nil
}

// GetDataset loads a dataset with its rows and warnings. id may be a unique prefix.
func (s *SQLiteStorage) GetDataset(ctx context.Context, id string) (*model.Dataset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	ds, err := s.getDatasetMeta(ctx, fullID)
	if err != nil {
		return nil, err
	}
	if ds.Rows, err = s.getRows(ctx, fullID); err != nil {
		return nil, err
	}
	if ds.Warnings, err = s.getWarnings(ctx, fullID); err != nil {
		return nil, err
	}
	ds.WarningCount = len(ds.Warnings)
	return ds, nil
}

// resolveID expands a unique id prefix into a full dataset id.
func (s *SQLiteStorage) resolveID(ctx context.Context, prefix string) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM datasets WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		prefix, escapeLike(prefix)+"%", prefix)
	if err != nil {
		return "", fmt.Errorf("failed to look up dataset: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan dataset id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to look up dataset: %w", err)
	}

	switch {
	case len(ids) == 0:
		return "", fmt.Errorf("dataset %s: %w", prefix, common.ErrNotFound)
	case ids[0] == prefix || len(ids) == 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *SQLiteStorage) getDatasetMeta(ctx context.Context, id string) (*model.Dataset, error) {
	var ds model.Dataset
	var source sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, row_count, corrected_count, imported_at
		FROM datasets WHERE id = ?`, id).
		Scan(&ds.ID, &ds.Name, &source, &ds.RowCount, &ds.CorrectedCount, &ds.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	ds.Source = source.String
	return &ds, nil
}

func (s *SQLiteStorage) getRows(ctx context.Context, id string) ([]model.CanonicalRow, error) {
	query := fmt.Sprintf("SELECT %s FROM dataset_rows WHERE dataset_id = ? ORDER BY line",
		strings.Join(rowColumns, ", "))
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CanonicalRow
	for rows.Next() {
		var ident model.Identity
		amounts := make([]float64, len(model.NumericFields))
		dest := []any{&ident.ProductGroup, &ident.SKU, &ident.Customer, &ident.Period}
		for i := range amounts {
			dest = append(dest, &amounts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		byField := make(map[model.Field]float64, len(amounts))
		for i, f := range model.NumericFields {
			byField[f] = amounts[i]
		}
		out = append(out, model.NewCanonicalRow(ident, byField))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStorage) getWarnings(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM dataset_warnings WHERE dataset_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query warnings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// ListDatasets returns dataset metadata, newest first. Rows and warnings are not loaded.
func (s *SQLiteStorage) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.source, d.row_count, d.corrected_count, d.imported_at,
			(SELECT COUNT(*) FROM dataset_warnings w WHERE w.dataset_id = d.id)
		FROM datasets d
		ORDER BY d.imported_at DESC, d.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	datasets := []model.Dataset{}
	for rows.Next() {
		var ds model.Dataset
		var source sql.NullString
		var warnings int
		if err := rows.Scan(&ds.ID, &ds.Name, &source, &ds.RowCount, &ds.CorrectedCount, &ds.ImportedAt, &warnings); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		ds.Source = source.String
		ds.WarningCount = warnings
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

// LatestDataset loads the most recently imported dataset.
func (s *SQLiteStorage) LatestDataset(ctx context.Context) (*model.Dataset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM datasets ORDER BY imported_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no datasets imported yet: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest dataset: %w", err)
	}
	return s.GetDataset(ctx, id)
}

// DeleteDataset removes a dataset and everything stored with it. id may be a unique prefix.
func (s *SQLiteStorage) DeleteDataset(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"dataset_warnings", "dataset_rows"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE dataset_id = ?", table), fullID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, fullID); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	return tx.Commit()
}
