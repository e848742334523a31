package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/charmbracelet/lipgloss"
)

// Bar glyphs.
const (
	TotalBar     = "█"
	DecrementBar = "▒"
)

// DefaultChartWidth is the bar area width in cells.
const DefaultChartWidth = 40

// ChartOptions tune RenderWaterfall.
type ChartOptions struct {
	Width     int
	SkipEmpty bool // leave out decrement steps whose amount is zero
}

// RenderWaterfall draws the bridge as floating horizontal bars: totals grow from the
// left edge and each decrement hangs at the level it takes the running total down to.
func RenderWaterfall(steps []model.WaterfallStep, f NumberFormat, opts ChartOptions) string {
	if len(steps) == 0 {
		return ""
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultChartWidth
	}

	scale := 0.0
	for _, s := range steps {
		if s.Kind != model.StepDecrement {
			scale = math.Max(scale, s.Amount)
		}
	}
	gross := steps[0].Amount

	visible := make([]model.WaterfallStep, 0, len(steps))
	for _, s := range steps {
		if opts.SkipEmpty && s.Kind == model.StepDecrement && s.Amount == 0 {
			continue
		}
		visible = append(visible, s)
	}
	labelWidth := 0
	amounts := make([]string, len(visible))
	amountWidth := 0
	for i, s := range visible {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
		amounts[i] = FormatAmount(s.Amount, f)
		amountWidth = max(amountWidth, len([]rune(amounts[i])))
	}

	var b strings.Builder
	level := 0.0
	i := 0
	for _, s := range steps {
		lo, hi := 0.0, s.Amount
		style := TotalBarStyle
		glyph := TotalBar
		if s.Kind == model.StepDecrement {
			hi = level
			lo = math.Max(0, level-math.Abs(s.Amount))
			level -= math.Abs(s.Amount)
			style = DecrementBarStyle
			glyph = DecrementBar
		} else {
			level = s.Amount
		}
		if opts.SkipEmpty && s.Kind == model.StepDecrement && s.Amount == 0 {
			continue
		}

		from, to := barSpan(lo, hi, scale, width, s.Amount != 0)
		fmt.Fprintf(&b, "%s  %s%s%s  %s  %s\n",
			padRight(s.Label, labelWidth),
			strings.Repeat(" ", from),
			style.Render(strings.Repeat(glyph, to-from)),
			strings.Repeat(" ", width-to),
			padLeft(amounts[i], amountWidth),
			SubtleStyle.Render(FormatShare(aggregate.Share(s.Amount, gross))),
		)
		i++
	}
	return b.String()
}

// barSpan maps [lo, hi] onto cell offsets within width. Non-zero amounts always get
// at least one cell.
func barSpan(lo, hi, scale float64, width int, nonZero bool) (int, int) {
	if scale <= 0 || hi <= lo {
		if nonZero && scale > 0 {
			from := min(int(math.Round(math.Max(lo, 0)/scale*float64(width))), width-1)
			return from, from + 1
		}
		return 0, 0
	}
	from := int(math.Round(lo / scale * float64(width)))
	to := int(math.Round(hi / scale * float64(width)))
	from = min(max(from, 0), width)
	to = min(max(to, from), width)
	if nonZero && to == from {
		if to < width {
			to++
		} else {
			from--
		}
	}
	return from, to
}

// RenderTotals prints the headline numbers of a summary.
func RenderTotals(s aggregate.Summary, f NumberFormat) string {
	rows := [][2]string{
		{model.FieldGross.Label(), FormatAmount(s.Gross, f)},
		{"Total Discounts", FormatAmount(s.TotalDiscounts, f) + "  " + SubtleStyle.Render(FormatPercent(s.DiscountPct))},
		{model.FieldInvoiced.Label(), FormatAmount(s.Invoiced, f)},
		{"Total Rebates", FormatAmount(s.TotalRebates, f)},
		{model.FieldNet.Label(), BoldStyle.Render(FormatAmount(s.Net, f))},
		{"Income (not in net)", FormatAmount(s.TotalIncome, f)},
		{"Rows", fmt.Sprintf("%d", s.RowCount)},
	}
	return renderPairs(rows)
}

// RenderBuckets lists bucket totals with their share of gross. Empty buckets are
// omitted; an all-empty list renders a single note.
func RenderBuckets(title string, buckets []model.BucketTotal, f NumberFormat) string {
	var b strings.Builder
	b.WriteString(BoldStyle.Render(title) + "\n")

	labelWidth := 0
	for _, bucket := range buckets {
		labelWidth = max(labelWidth, lipgloss.Width(bucket.Label))
	}
	shown := 0
	for _, bucket := range buckets {
		if bucket.Amount == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s  %12s  %s\n",
			padRight(bucket.Label, labelWidth),
			FormatAmount(bucket.Amount, f),
			SubtleStyle.Render(FormatShare(bucket.Share)))
		shown++
	}
	if shown == 0 {
		b.WriteString(SubtleStyle.Render("  none") + "\n")
	}
	return b.String()
}

// RenderOutliers lists ranked customers or SKUs with their deviation from the overall
// discount ratio.
func RenderOutliers(title string, outliers []aggregate.Outlier, f NumberFormat) string {
	var b strings.Builder
	b.WriteString(BoldStyle.Render(title) + "\n")
	if len(outliers) == 0 {
		b.WriteString(SubtleStyle.Render("  none") + "\n")
		return b.String()
	}

	nameWidth := 0
	for _, o := range outliers {
		nameWidth = max(nameWidth, lipgloss.Width(o.Name))
	}
	for i, o := range outliers {
		line := fmt.Sprintf("  %d. %s  %12s  %6s  %+.1f pp",
			i+1,
			padRight(o.Name, nameWidth),
			FormatAmount(o.Discount, f),
			FormatPercent(o.DiscountPct),
			o.DeviationPP)
		if o.Flagged {
			line += "  " + WarningStyle.Render(FlagIcon+" above threshold")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RenderDiagnostics summarizes a normalization pass. At most limit warnings are
// listed; a negative limit lists all of them.
func RenderDiagnostics(res model.ValidationResult, limit int) string {
	var b strings.Builder
	if res.Failed() {
		b.WriteString(FormatError("Upload rejected") + "\n")
		for _, e := range res.Errors {
			b.WriteString("  " + ErrorStyle.Render(e) + "\n")
		}
		return b.String()
	}

	b.WriteString(FormatSuccess(fmt.Sprintf("%d rows accepted", len(res.Rows))) + "\n")
	if res.CorrectedCount > 0 {
		b.WriteString(FormatInfo(fmt.Sprintf("%d rows had subtotals recomputed", res.CorrectedCount)) + "\n")
	}
	if len(res.Warnings) == 0 {
		return b.String()
	}

	b.WriteString(FormatWarning(fmt.Sprintf("%d warnings", len(res.Warnings))) + "\n")
	shown := len(res.Warnings)
	if limit >= 0 {
		shown = min(shown, limit)
	}
	for _, w := range res.Warnings[:shown] {
		b.WriteString("  " + w + "\n")
	}
	if rest := len(res.Warnings) - shown; rest > 0 {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("  ... and %d more", rest)) + "\n")
	}
	return b.String()
}

// RenderScenario compares a scenario against its baseline.
func RenderScenario(res scenario.Result, f NumberFormat) string {
	var b strings.Builder

	labelWidth := 0
	for _, a := range res.Adjustments {
		labelWidth = max(labelWidth, lipgloss.Width(a.Label))
	}
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("  %s  %12s  %9s  %12s  %12s",
		padRight("Bucket", labelWidth), "Base", "Reduction", "Adjusted", "Saving")) + "\n")
	for _, a := range res.Adjustments {
		if a.Base == 0 && a.Fraction == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s  %12s  %9s  %12s  %12s\n",
			padRight(a.Label, labelWidth),
			FormatAmount(a.Base, f),
			FormatShare(a.Fraction),
			FormatAmount(a.Adjusted, f),
			FormatAmount(a.Saving, f))
	}
	b.WriteString("\n")

	b.WriteString(renderPairs([][2]string{
		{"Base Net Sales", FormatAmount(res.BaseNet, f)},
		{"Scenario Net Sales", BoldStyle.Render(FormatAmount(res.Net, f))},
		{"Uplift", SuccessStyle.Render("+" + FormatAmount(res.Uplift, f))},
	}))

	if len(res.Clamped) > 0 {
		b.WriteString(FormatWarning("clamped to [0, max]: "+strings.Join(labels(res.Clamped), ", ")) + "\n")
	}
	if len(res.Ignored) > 0 {
		b.WriteString(FormatWarning("only discounts can be reduced, ignored: "+strings.Join(labels(res.Ignored), ", ")) + "\n")
	}
	return b.String()
}

func labels(fields []model.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label()
	}
	return out
}

func renderPairs(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s  %s\n", padRight(r[0], width), r[1])
	}
	return b.String()
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}
