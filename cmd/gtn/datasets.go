package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/config"
	"github.com/spf13/cobra"
)

func datasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ds"},
		Short:   "Manage imported datasets",
		Long: `List, inspect, delete and back up imported datasets.

Dataset ids may be abbreviated to any unique prefix.`,
		Example: `  gtn datasets list
  gtn datasets show 3f2a
  gtn datasets delete 3f2a
  gtn datasets backup ~/backups/gtn-2024-04.db`,
	}

	cmd.AddCommand(listDatasetsCmd())
	cmd.AddCommand(showDatasetCmd())
	cmd.AddCommand(deleteDatasetCmd())
	cmd.AddCommand(backupCmd())

	return cmd
}

func listDatasetsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported datasets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings, err := config.Load()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			datasets, err := store.ListDatasets(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(datasets)
			}
			if len(datasets) == 0 {
				_, err := fmt.Fprintln(out, cli.FormatInfo("No datasets yet. Import one with: gtn import <file>"))
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tROWS\tWARNINGS\tCORRECTED\tIMPORTED")
			for _, ds := range datasets {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
					shortID(ds.ID), ds.Name, ds.RowCount, ds.WarningCount, ds.CorrectedCount,
					ds.ImportedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func showDatasetCmd() *cobra.Command {
	var showWarnings int

	cmd := &cobra.Command{
		Use:   "show [dataset-id]",
		Short: "Show a dataset's import diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := config.Load()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ds, err := openDataset(ctx, store, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			content := fmt.Sprintf("ID:        %s\nSource:    %s\nImported:  %s\nRows:      %d\nCorrected: %d\nWarnings:  %d",
				ds.ID, ds.Source, ds.ImportedAt.Local().Format(time.DateTime), ds.RowCount, ds.CorrectedCount, ds.WarningCount)
			_, _ = fmt.Fprintln(out, cli.RenderBox(ds.Name, content))

			limit := min(showWarnings, len(ds.Warnings))
			if showWarnings < 0 {
				limit = len(ds.Warnings)
			}
			for _, w := range ds.Warnings[:limit] {
				_, _ = fmt.Fprintln(out, "  "+w)
			}
			if rest := len(ds.Warnings) - limit; rest > 0 {
				_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("  ... and %d more", rest)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&showWarnings, "show-warnings", 20, "Maximum warnings to print (-1 for all)")
	return cmd
}

func deleteDatasetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <dataset-id>",
		Short: "Delete a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := config.Load()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ds, err := store.GetDataset(ctx, args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(),
					fmt.Sprintf("Delete dataset %s (%s, %d rows)?", shortID(ds.ID), ds.Name, ds.RowCount))
				if err != nil {
					return err
				}
				if !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return err
				}
			}

			if err := store.DeleteDataset(ctx, ds.ID); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted dataset "+shortID(ds.ID)))
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <path>",
		Short: "Write a consistent copy of the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := config.Load()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			dest, err := store.Backup(ctx, config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			size := "unknown size"
			if info, statErr := os.Stat(dest); statErr == nil {
				size = formatFileSize(info.Size())
			}
			common.LogInfo("database backed up", common.Fields{"path": dest})
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s Backed up to %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(dest), size)
			return err
		},
	}
}

func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
