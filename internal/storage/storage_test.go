package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testDataset(name string) *model.Dataset {
	return &model.Dataset{
		Name:   name,
		Source: "upload.xlsx",
		Rows: []model.CanonicalRow{
			model.NewCanonicalRow(model.Identity{
				ProductGroup: "Oncology", SKU: "ONC-10", Customer: "Apotheek Noord", Period: "2024-03",
			}, map[model.Field]float64{
				model.FieldGross:               1000,
				model.FieldDiscountChannel:     100,
				model.FieldDiscountOtherSales:  25,
				model.FieldInvoiced:            875,
				model.FieldRebatePromptPayment: 15,
				model.FieldIncomeRoyalty:       5,
				model.FieldNet:                 865,
			}),
			model.NewCanonicalRow(model.Identity{
				ProductGroup: "Vaccines", SKU: "VAC-1", Customer: "", Period: "not-a-date",
			}, map[model.Field]float64{model.FieldGross: 10}),
		},
		Warnings:       []string{"Row 3: unrecognized period \"not-a-date\" kept as-is", "Row 3: Invoiced Sales missing; derived as 10.00 (gross minus discounts)"},
		CorrectedCount: 2,
	}
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	require.NoError(t, store.Migrate(ctx), "migrating twice is a no-op")
}

func TestSaveAndGetDataset(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	ds := testDataset("March upload")

	require.NoError(t, store.SaveDataset(ctx, ds))
	require.NotEmpty(t, ds.ID)
	assert.False(t, ds.ImportedAt.IsZero())
	assert.Equal(t, 2, ds.RowCount)

	got, err := store.GetDataset(ctx, ds.ID)
	require.NoError(t, err)

	assert.Equal(t, ds.ID, got.ID)
	assert.Equal(t, "March upload", got.Name)
	assert.Equal(t, "upload.xlsx", got.Source)
	assert.Equal(t, 2, got.CorrectedCount)
	assert.Equal(t, 2, got.WarningCount)
	assert.Equal(t, ds.Warnings, got.Warnings)
	assert.Equal(t, ds.Rows, got.Rows, "rows round-trip without re-normalization")
	assert.WithinDuration(t, ds.ImportedAt, got.ImportedAt, time.Second)
}

func TestGetDataset_ByPrefix(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	a := testDataset("a")
	a.ID = "abc-111"
	b := testDataset("b")
	b.ID = "abd-222"
	require.NoError(t, store.SaveDataset(ctx, a))
	require.NoError(t, store.SaveDataset(ctx, b))

	got, err := store.GetDataset(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-111", got.ID)

	_, err = store.GetDataset(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = store.GetDataset(ctx, "zzz")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListDatasets_NewestFirst(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	empty, err := store.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	older := testDataset("January")
	older.ImportedAt = time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	newer := testDataset("February")
	newer.ImportedAt = time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveDataset(ctx, newer))
	require.NoError(t, store.SaveDataset(ctx, older))

	list, err := store.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "February", list[0].Name)
	assert.Equal(t, "January", list[1].Name)
	assert.Nil(t, list[0].Rows, "listing does not load rows")
	assert.Equal(t, 2, list[0].WarningCount)

	latest, err := store.LatestDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	assert.Len(t, latest.Rows, 2)
}

func TestLatestDataset_Empty(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.LatestDataset(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteDataset(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	ds := testDataset("to delete")
	require.NoError(t, store.SaveDataset(ctx, ds))

	require.NoError(t, store.DeleteDataset(ctx, ds.ID))

	_, err := store.GetDataset(ctx, ds.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	var rows int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM dataset_rows`).Scan(&rows))
	assert.Zero(t, rows)

	assert.ErrorIs(t, store.DeleteDataset(ctx, ds.ID), common.ErrNotFound)
}

func TestSaveDataset_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		ds      *model.Dataset
		wantErr error
	}{
		{name: "nil dataset", ds: nil, wantErr: ErrNilParameter},
		{name: "missing name", ds: &model.Dataset{Rows: testDataset("x").Rows}, wantErr: ErrInvalidDataset},
		{name: "no rows", ds: &model.Dataset{Name: "empty"}, wantErr: common.ErrEmptyDataset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.SaveDataset(ctx, tt.ds), tt.wantErr)
		})
	}

	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, store.SaveDataset(nil, testDataset("x")), ErrNilContext)
}

func TestSaveDataset_DuplicateID(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := testDataset("first")
	first.ID = "3f1c2a9e-0000-4000-8000-000000000001"
	require.NoError(t, store.SaveDataset(ctx, first))

	second := testDataset("second")
	second.ID = first.ID
	err := store.SaveDataset(ctx, second)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)

	got, err := store.GetDataset(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestNewSQLiteStorage_NotADatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(dbPath, []byte(strings.Repeat("not a sqlite file ", 64)), 0600))

	store, err := NewSQLiteStorage(dbPath)
	if err == nil {
		t.Cleanup(func() { _ = store.Close() })
		err = store.Migrate(context.Background())
	}
	assert.ErrorIs(t, err, common.ErrDatabaseCorrupted)
}

func TestMapSQLiteError(t *testing.T) {
	plain := errors.New("disk full")
	tests := []struct {
		err  error
		want error
		name string
	}{
		{name: "unique constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: common.ErrDuplicateEntry},
		{name: "primary key", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, want: common.ErrDuplicateEntry},
		{name: "corrupt", err: sqlite3.Error{Code: sqlite3.ErrCorrupt}, want: common.ErrDatabaseCorrupted},
		{name: "not a database", err: sqlite3.Error{Code: sqlite3.ErrNotADB}, want: common.ErrDatabaseCorrupted},
		{name: "other driver error", err: sqlite3.Error{Code: sqlite3.ErrBusy}},
		{name: "non driver error", err: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapSQLiteError(tt.err)
			if tt.want == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestBackup(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	ds := testDataset("backed up")
	require.NoError(t, store.SaveDataset(ctx, ds))

	dest := filepath.Join(t.TempDir(), "backups", "gtn.db")
	written, err := store.Backup(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, written)

	restored, err := NewSQLiteStorage(dest)
	require.NoError(t, err)
	defer func() { _ = restored.Close() }()

	got, err := restored.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "backed up", got.Name)

	_, err = store.Backup(ctx, dest)
	assert.ErrorIs(t, err, ErrBackupExists)
}
