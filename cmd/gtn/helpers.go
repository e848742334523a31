package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/config"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/storage"
	"github.com/spf13/cobra"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, settings config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openDataset loads the dataset named by the first argument, or the latest import
// when there is none.
func openDataset(ctx context.Context, store *storage.SQLiteStorage, args []string) (*model.Dataset, error) {
	if len(args) > 0 && args[0] != "" {
		return store.GetDataset(ctx, args[0])
	}
	return store.LatestDataset(ctx)
}

func numberFormat(settings config.Settings) cli.NumberFormat {
	f := cli.DefaultNumberFormat()
	f.Currency = settings.Currency
	f.Thousands = settings.Thousands
	f.DecimalMark = settings.DecimalMark
	f.Decimals = settings.Decimals
	return f
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("customer", nil, "Only include these customers (repeatable)")
	cmd.Flags().StringSlice("sku", nil, "Only include these SKUs (repeatable)")
	cmd.Flags().StringSlice("period", nil, "Only include these periods, e.g. 2024-03 (repeatable)")
	cmd.Flags().StringSlice("group", nil, "Only include these product groups (repeatable)")
}

func filterFromFlags(cmd *cobra.Command) aggregate.Filter {
	customers, _ := cmd.Flags().GetStringSlice("customer")
	skus, _ := cmd.Flags().GetStringSlice("sku")
	periods, _ := cmd.Flags().GetStringSlice("period")
	groups, _ := cmd.Flags().GetStringSlice("group")
	return aggregate.Filter{
		Customers:     customers,
		SKUs:          skus,
		Periods:       periods,
		ProductGroups: groups,
	}
}

// writeOutput writes content to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+path))
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
