package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/config"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/normalize"
	"github.com/Veraticus/gross-to-net/internal/tabular"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type importOptions struct {
	name         string
	encoding     string
	sheet        string
	showWarnings int
	dryRun       bool
}

func importCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import sales uploads",
		Long: `Decode one or more CSV/XLSX uploads, normalize them into canonical rows
and store each as a dataset.

Number formats (1.234,56 / 1,234.56 / (500) / 12%) and period formats
(2024-03, 03/2024, 202403, 2024-Q1, Excel date serials) are recognized
automatically. Negative discounts and rebates are flipped to positive and
missing Invoiced or Net Sales are derived; supplied subtotals that do not
reconcile are kept and reported as warnings. Sheets without data rows are
not saved.`,
		Example: `  gtn import march.xlsx
  gtn import --encoding windows-1252 --name "Q1 NL" q1_nl.csv
  gtn import --dry-run --show-warnings 50 upload.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Dataset name (single file only; default: file name)")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "CSV text encoding (utf-8, windows-1252, iso-8859-1, iso-8859-15)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from XLSX uploads (default: first)")
	cmd.Flags().IntVar(&opts.showWarnings, "show-warnings", 20, "Maximum warnings to print per file (-1 for all)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate and report without saving")

	return cmd
}

func runImport(cmd *cobra.Command, files []string, opts importOptions) error {
	if opts.name != "" && len(files) > 1 {
		return common.NewUserError("--name can only be used with a single file", nil)
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var saved atomic.Int32
	interrupts := cli.NewInterruptHandler(out)
	ctx := interrupts.HandleInterrupts(cmd.Context(), func() int { return int(saved.Load()) })

	save := func(context.Context, *model.Dataset) error { return nil }
	if !opts.dryRun {
		store, err := initStorage(ctx, settings)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		save = store.SaveDataset
	}

	logger := common.LoggerFrom(ctx)
	normalizer := normalize.New(
		normalize.WithTolerance(settings.Tolerance()),
		normalize.WithLogger(logger),
	)

	var progress *progressbar.ProgressBar
	if len(files) > 1 {
		progress = cli.NewProgress(cmd.ErrOrStderr(), len(files), "Importing uploads...")
	}

	var rejected []string
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		ds, res, err := importFile(path, opts, normalizer)
		if progress != nil {
			_ = progress.Add(1)
		}
		if err != nil {
			rejected = append(rejected, filepath.Base(path))
			common.LogError(err, "upload could not be decoded", common.Fields{"file": path})
			_, _ = fmt.Fprintln(out, cli.FormatError(err.Error()))
			continue
		}

		_, _ = fmt.Fprintln(out, cli.FormatTitle(filepath.Base(path)))
		_, _ = fmt.Fprint(out, cli.RenderDiagnostics(res, opts.showWarnings))
		if res.Failed() {
			rejected = append(rejected, filepath.Base(path))
			continue
		}

		if opts.dryRun {
			_, _ = fmt.Fprintln(out, cli.FormatInfo("Dry run: nothing saved"))
			continue
		}
		if err := save(ctx, ds); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		saved.Add(1)
		logger.Debug("dataset saved", "id", ds.ID, "rows", ds.RowCount)
		_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved dataset %s (%s)", shortID(ds.ID), ds.Name)))
	}

	if interrupts.WasInterrupted() {
		return common.NewUserError("import interrupted", context.Canceled)
	}
	if len(rejected) > 0 {
		return common.NewUserError(
			fmt.Sprintf("%d upload(s) rejected: %s", len(rejected), strings.Join(rejected, ", ")),
			common.ErrNormalizeFailed)
	}
	return nil
}

// importFile decodes and normalizes one upload. Decoding failures are returned as
// errors; normalization problems travel in the ValidationResult.
func importFile(path string, opts importOptions, normalizer *normalize.Normalizer) (*model.Dataset, model.ValidationResult, error) {
	table, err := tabular.DecodeFile(path, tabular.Options{Encoding: opts.encoding, Sheet: opts.sheet})
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFormat) {
			return nil, model.ValidationResult{}, common.NewUserError("cannot import "+filepath.Base(path), err)
		}
		return nil, model.ValidationResult{}, err
	}

	res := normalizer.ValidateAndNormalize(table.Records)
	if res.Failed() {
		return nil, res, nil
	}
	if len(res.Rows) == 0 {
		return nil, res, common.NewUserError(filepath.Base(path)+" has no data rows", common.ErrEmptyDataset)
	}

	name := opts.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &model.Dataset{
		Name:           name,
		Source:         path,
		Rows:           res.Rows,
		Warnings:       res.Warnings,
		RowCount:       len(res.Rows),
		WarningCount:   len(res.Warnings),
		CorrectedCount: res.CorrectedCount,
	}, res, nil
}
