package cli

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Report is the input of the markdown and HTML renderers.
type Report struct {
	GeneratedAt time.Time
	Scenario    *scenario.Result
	Title       string
	Dataset     string
	Filter      aggregate.Filter
	Periods     []aggregate.PeriodSummary
	Summary     aggregate.Summary
	Format      NumberFormat
}

// RenderMarkdownReport writes the report as GitHub-flavored markdown.
func RenderMarkdownReport(r Report) string {
	f := r.Format
	s := r.Summary
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = "Gross-to-Net Waterfall"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Dataset: %s\n", mdEscape(r.Dataset))
	fmt.Fprintf(&b, "- Filter: %s\n", mdEscape(r.Filter.String()))
	fmt.Fprintf(&b, "- Rows: %d\n", s.RowCount)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	}

	b.WriteString("\n## Waterfall\n\n| Step | Amount | % of Gross |\n|---|---:|---:|\n")
	for _, step := range s.Steps {
		if step.Amount == 0 && step.Kind == model.StepDecrement {
			continue
		}
		label := step.Label
		if step.Kind != model.StepDecrement {
			label = "**" + label + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", label, FormatAmount(step.Amount, f), FormatShare(aggregate.Share(step.Amount, s.Gross)))
	}
	fmt.Fprintf(&b, "\nTotal discounts are %s of gross. Income of %s is reported separately and not included in net.\n",
		FormatPercent(s.DiscountPct), FormatAmount(s.TotalIncome, f))

	b.WriteString("\n## Top customers by discount\n\n")
	writeOutlierTable(&b, s.TopCustomers, f)
	b.WriteString("\n## Top SKUs by discount\n\n")
	writeOutlierTable(&b, s.TopSKUs, f)

	if len(r.Periods) > 1 {
		b.WriteString("\n## By period\n\n| Period | Gross | Discounts | Invoiced | Rebates | Net | Discount % |\n|---|---:|---:|---:|---:|---:|---:|\n")
		for _, p := range r.Periods {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				p.Period,
				FormatAmount(p.Gross, f),
				FormatAmount(p.TotalDiscounts, f),
				FormatAmount(p.Invoiced, f),
				FormatAmount(p.TotalRebates, f),
				FormatAmount(p.Net, f),
				FormatPercent(p.DiscountPct))
		}
	}

	if r.Scenario != nil {
		res := r.Scenario
		b.WriteString("\n## Scenario\n\n| Bucket | Base | Reduction | Adjusted | Saving |\n|---|---:|---:|---:|---:|\n")
		for _, a := range res.Adjustments {
			if a.Fraction == 0 {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				a.Label, FormatAmount(a.Base, f), FormatShare(a.Fraction), FormatAmount(a.Adjusted, f), FormatAmount(a.Saving, f))
		}
		fmt.Fprintf(&b, "\nNet sales move from %s to %s, an uplift of %s.\n",
			FormatAmount(res.BaseNet, f), FormatAmount(res.Net, f), FormatAmount(res.Uplift, f))
	}
	return b.String()
}

func writeOutlierTable(b *strings.Builder, outliers []aggregate.Outlier, f NumberFormat) {
	if len(outliers) == 0 {
		b.WriteString("_none_\n")
		return
	}
	b.WriteString("| Name | Gross | Discount | Discount % | Deviation | Flag |\n|---|---:|---:|---:|---:|---|\n")
	for _, o := range outliers {
		flag := ""
		if o.Flagged {
			flag = "above threshold"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %+.1f pp | %s |\n",
			mdEscape(o.Name), FormatAmount(o.Gross, f), FormatAmount(o.Discount, f), FormatPercent(o.DiscountPct), o.DeviationPP, flag)
	}
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`).Replace(s)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTMLReport converts the markdown report into a standalone HTML page.
func RenderHTMLReport(r Report) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(RenderMarkdownReport(r)), &body); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", htmlTitle(r.Title))
	page.WriteString("<style>body{font-family:sans-serif;max-width:60rem;margin:2rem auto}" +
		"table{border-collapse:collapse}td,th{padding:.25rem .75rem;border-bottom:1px solid #ddd}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

func htmlTitle(title string) string {
	if title == "" {
		title = "Gross-to-Net Waterfall"
	}
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(title)
}
