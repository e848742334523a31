package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/config"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/Veraticus/gross-to-net/internal/tui"
	"github.com/Veraticus/gross-to-net/internal/tui/themes"
	"github.com/spf13/cobra"
)

type scenarioOptions struct {
	format      string
	reduce      []string
	width       int
	interactive bool
}

func scenarioCmd() *cobra.Command {
	var opts scenarioOptions

	cmd := &cobra.Command{
		Use:   "scenario [dataset-id]",
		Short: "Explore discount reduction scenarios",
		Long: `Recompute the waterfall with one or more discount buckets reduced.

Reductions are fractions of the bucket (0.1 or 10%) and are capped at
scenario.max_fraction (20% by default). Only discount buckets can be reduced;
rebates stay as they are.`,
		Example: `  gtn scenario --reduce channel=0.1 --reduce volume=5%
  gtn scenario 3f2a --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, args, opts)
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringArrayVarP(&opts.reduce, "reduce", "r", nil, "Reduce a discount bucket: name=fraction (repeatable)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Open the interactive scenario explorer")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().IntVar(&opts.width, "width", cli.DefaultChartWidth, "Bar chart width in cells")

	return cmd
}

func runScenario(cmd *cobra.Command, args []string, opts scenarioOptions) error {
	fractions, err := scenario.ParseFractions(opts.reduce)
	if err != nil {
		return common.NewUserError("invalid --reduce value", err)
	}
	if len(fractions) == 0 && !opts.interactive {
		return common.NewUserError("nothing to do: pass --reduce bucket=fraction or --interactive", nil)
	}

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
	base := aggregate.Aggregate(filter.Apply(ds.Rows), settings.Aggregate())
	f := numberFormat(settings)

	var res scenario.Result
	if opts.interactive {
		res, err = tui.Run(ctx, tui.NewConfig(base,
			tui.WithEngine(settings.Engine()),
			tui.WithStep(settings.ScenarioStep),
			tui.WithInitial(fractions),
			tui.WithFormat(f),
			tui.WithTheme(themes.ByName(settings.Theme)),
			tui.WithTitle(fmt.Sprintf("Scenario explorer: %s (%s)", ds.Name, filter.String())),
		))
		if err != nil {
			return err
		}
	} else {
		res = settings.Engine().Apply(base, fractions)
	}

	if len(res.Clamped) > 0 || len(res.Ignored) > 0 {
		common.LogDebug("scenario inputs adjusted", common.Fields{"clamped": res.Clamped, "ignored": res.Ignored})
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "text", "":
		_, _ = fmt.Fprintln(out, cli.FormatTitle("Scenario: "+describeFractions(res.Applied)))
		_, _ = fmt.Fprintln(out, cli.RenderWaterfall(res.Steps, f, cli.ChartOptions{Width: opts.width, SkipEmpty: true}))
		_, err := fmt.Fprint(out, cli.RenderScenario(res, f))
		return err
	default:
		return common.NewUserError(fmt.Sprintf("unknown format %q (use text or json)", opts.format), common.ErrUnsupportedFormat)
	}
}

func describeFractions(f scenario.Fractions) string {
	if len(f) == 0 {
		return "baseline"
	}
	return strings.Join(f.Format(), ", ")
}
