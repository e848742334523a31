package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/config"
	"github.com/Veraticus/gross-to-net/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command migrates automatically; this command is useful to check the
schema version or to prepare a database ahead of time.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	settings, err := config.Load()
	if err != nil {
		return err
	}

	slog.Debug("opening database", "database", settings.DatabasePath, "status_only", status)

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		_, err := fmt.Fprintf(out, "Database:        %s\nCurrent version: %d\nLatest version:  %d\n",
			settings.DatabasePath, current, storage.ExpectedSchemaVersion)
		return err
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	msg := fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)
	if current < storage.ExpectedSchemaVersion {
		msg = fmt.Sprintf("Migrated database from version %d to %d", current, storage.ExpectedSchemaVersion)
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess(msg))
	return err
}
