package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/config"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	format   string
	output   string
	width    int
	byPeriod bool
	all      bool
}

func reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report [dataset-id]",
		Short: "Show the gross-to-net waterfall",
		Long: `Aggregate a dataset into the gross-to-net waterfall: totals, discount and
rebate buckets, the bridge chart and the customers and SKUs with the largest
discount exposure. Defaults to the most recent import.`,
		Example: `  gtn report
  gtn report 3f2a --customer "Apotheek Noord" --period 2024-03
  gtn report --format html --output waterfall.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format (text, json, markdown, html)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().IntVar(&opts.width, "width", cli.DefaultChartWidth, "Bar chart width in cells")
	cmd.Flags().BoolVar(&opts.byPeriod, "by-period", false, "Add a per-period breakdown")
	cmd.Flags().BoolVar(&opts.all, "all-steps", false, "Show empty discount and rebate steps in the chart")

	return cmd
}

// reportJSON is the machine-readable report.
type reportJSON struct {
	Dataset string                    `json:"dataset"`
	Filter  aggregate.Filter          `json:"filter"`
	Summary aggregate.Summary         `json:"summary"`
	Periods []aggregate.PeriodSummary `json:"periods,omitempty"`
}

func runReport(cmd *cobra.Command, args []string, opts reportOptions) error {
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

	filter := filterFromFlags(cmd)
	rows := filter.Apply(ds.Rows)
	if len(rows) == 0 {
		common.LogInfo("no rows match the filter", common.Fields{"filter": filter.String(), "dataset": ds.ID})
	}

	summary := aggregate.Aggregate(rows, settings.Aggregate())
	var periods []aggregate.PeriodSummary
	if opts.byPeriod || opts.format == "markdown" || opts.format == "html" {
		periods = aggregate.ByPeriod(rows, settings.Aggregate())
	}

	f := numberFormat(settings)
	switch opts.format {
	case "json":
		data, err := json.MarshalIndent(reportJSON{Dataset: ds.ID, Filter: filter, Summary: summary, Periods: periods}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return writeOutput(cmd, opts.output, string(data)+"\n")
	case "markdown", "md":
		return writeOutput(cmd, opts.output, cli.RenderMarkdownReport(newCLIReport(ds, filter, summary, periods, f)))
	case "html":
		page, err := cli.RenderHTMLReport(newCLIReport(ds, filter, summary, periods, f))
		if err != nil {
			return err
		}
		return writeOutput(cmd, opts.output, page)
	case "text", "":
		return writeOutput(cmd, opts.output, renderTextReport(ds, filter, summary, periods, f, opts))
	default:
		return common.NewUserError(fmt.Sprintf("unknown format %q (use text, json, markdown or html)", opts.format), common.ErrUnsupportedFormat)
	}
}

func newCLIReport(ds *model.Dataset, filter aggregate.Filter, summary aggregate.Summary, periods []aggregate.PeriodSummary, f cli.NumberFormat) cli.Report {
	return cli.Report{
		Title:       "Gross-to-Net Waterfall",
		Dataset:     ds.Name,
		GeneratedAt: time.Now(),
		Filter:      filter,
		Summary:     summary,
		Periods:     periods,
		Format:      f,
	}
}

func renderTextReport(ds *model.Dataset, filter aggregate.Filter, s aggregate.Summary, periods []aggregate.PeriodSummary, f cli.NumberFormat, opts reportOptions) string {
	var b strings.Builder
	b.WriteString(cli.FormatTitle(fmt.Sprintf("%s (%s)", ds.Name, filter.String())) + "\n")
	b.WriteString(cli.RenderTotals(s, f) + "\n")
	b.WriteString(cli.RenderWaterfall(s.Steps, f, cli.ChartOptions{Width: opts.width, SkipEmpty: !opts.all}) + "\n")
	b.WriteString(cli.RenderBuckets("Discounts", s.Buckets, f) + "\n")
	b.WriteString(cli.RenderBuckets("Rebates", aggregate.SortByAmount(s.RebateBuckets), f) + "\n")
	b.WriteString(cli.RenderOutliers("Top customers by discount", s.TopCustomers, f) + "\n")
	b.WriteString(cli.RenderOutliers("Top SKUs by discount", s.TopSKUs, f))

	if opts.byPeriod && len(periods) > 0 {
		b.WriteString("\n" + cli.BoldStyle.Render("By period") + "\n")
		for _, p := range periods {
			fmt.Fprintf(&b, "  %-8s  gross %12s  net %12s  discounts %s\n",
				p.Period, cli.FormatAmount(p.Gross, f), cli.FormatAmount(p.Net, f), cli.FormatPercent(p.DiscountPct))
		}
	}
	return b.String()
}
