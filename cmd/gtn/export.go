package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/config"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/Veraticus/gross-to-net/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newReportWriter is replaced in tests.
var newReportWriter = func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (sheets.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg, logger)
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Publish reports to external services",
	}

	cmd.AddCommand(exportSheetsCmd())
	cmd.AddCommand(exportAuthCmd())

	return cmd
}

type exportOptions struct {
	title    string
	reduce   []string
	byPeriod bool
}

func exportSheetsCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "sheets [dataset-id]",
		Short: "Export the waterfall to Google Sheets",
		Long: `Write the waterfall, bucket totals, outliers and optionally a per-period
breakdown and a scenario into a Google Sheets spreadsheet.

Credentials come from the sheets.* config keys or GOOGLE_SHEETS_* environment
variables (a .env file in the working directory is read too). Use either a
service account key or an OAuth2 client with a refresh token from
'gtn export auth'.`,
		Example: `  gtn export sheets
  gtn export sheets 3f2a --reduce channel=10% --title "Q1 what-if"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportSheets(cmd, args, opts)
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringVar(&opts.title, "title", "", "Title shown on the waterfall tab")
	cmd.Flags().StringArrayVarP(&opts.reduce, "reduce", "r", nil, "Add a scenario tab: name=fraction (repeatable)")
	cmd.Flags().BoolVar(&opts.byPeriod, "by-period", true, "Add a per-period tab when there is more than one period")

	return cmd
}

func runExportSheets(cmd *cobra.Command, args []string, opts exportOptions) error {
	fractions, err := scenario.ParseFractions(opts.reduce)
	if err != nil {
		return common.NewUserError("invalid --reduce value", err)
	}

	ctx := cmd.Context()
	settings, err := config.Load()
	if err != nil {
		return err
	}
	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured", err)
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

	filter := filterFromFlags(cmd)
	rows := filter.Apply(ds.Rows)
	report := sheets.Report{
		Title:       opts.title,
		Dataset:     ds.Name,
		GeneratedAt: time.Now(),
		Filter:      filter,
		Summary:     aggregate.Aggregate(rows, settings.Aggregate()),
	}
	if opts.byPeriod {
		report.Periods = aggregate.ByPeriod(rows, settings.Aggregate())
	}
	if len(fractions) > 0 {
		res := settings.Engine().Apply(report.Summary, fractions)
		report.Scenario = &res
	}

	writer, err := newReportWriter(ctx, *sheetsCfg, common.LoggerFrom(ctx))
	if err != nil {
		return err
	}
	spreadsheetID, err := writer.Write(ctx, report)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n  https://docs.google.com/spreadsheets/d/%s\n",
		cli.FormatSuccess("Exported "+ds.Name), spreadsheetID)
	return err
}

func exportAuthCmd() *cobra.Command {
	var port int
	var tokenFile string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access with OAuth2",
		Long: `Run the browser OAuth2 flow for the client in sheets.client_id and
sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID / GOOGLE_SHEETS_CLIENT_SECRET)
and print the refresh token to put in your configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientID := firstNonEmpty(viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
			clientSecret := firstNonEmpty(viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
			if clientID == "" || clientSecret == "" {
				return common.NewUserError("set sheets.client_id and sheets.client_secret first", common.ErrMissingConfig)
			}

			out := cmd.OutOrStdout()
			token, err := sheets.Authorize(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    config.ExpandPath(tokenFile),
				Port:         port,
			}, func(url string) {
				_, _ = fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize gtn:"))
				_, _ = fmt.Fprintln(out, "  "+url)
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(out, "%s\n\nAdd this to ~/.config/gtn/config.yaml:\n\nsheets:\n  refresh_token: %s\n",
				cli.FormatSuccess("Authorized"), token.RefreshToken)
			return err
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Local port for the OAuth2 callback")
	cmd.Flags().StringVar(&tokenFile, "token-file", "~/.config/gtn/sheets-token.json", "Where to save the token (empty to skip)")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
