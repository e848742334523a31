package sheets

import (
	"time"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/shopspring/decimal"
)

// Tab titles, in the order they appear in the spreadsheet.
const (
	TabWaterfall = "Waterfall"
	TabBuckets   = "Buckets"
	TabOutliers  = "Outliers"
	TabPeriods   = "Periods"
	TabScenario  = "Scenario"
)

// Report is everything the writer publishes for one dataset.
type Report struct {
	GeneratedAt time.Time
	Scenario    *scenario.Result
	Title       string
	Dataset     string
	Filter      aggregate.Filter
	Periods     []aggregate.PeriodSummary
	Summary     aggregate.Summary
}

// Tab is one worksheet's worth of cells.
type Tab struct {
	Title  string
	Values [][]any
	// MoneyColumns are zero-based columns formatted as currency.
	MoneyColumns []int64
}

// PrepareTabs lays the report out as worksheet grids. The scenario tab is only
// present when the report carries a scenario, and the period tab only when there is
// more than one period.
func PrepareTabs(r Report) []Tab {
	tabs := []Tab{waterfallTab(r), bucketsTab(r.Summary), outliersTab(r.Summary)}
	if len(r.Periods) > 1 {
		tabs = append(tabs, periodsTab(r.Periods))
	}
	if r.Scenario != nil {
		tabs = append(tabs, scenarioTab(*r.Scenario))
	}
	return tabs
}

func waterfallTab(r Report) Tab {
	s := r.Summary
	title := r.Title
	if title == "" {
		title = DefaultSpreadsheetName
	}

	values := make([][]any, 0, len(s.Steps)+10)
	values = append(values,
		[]any{title, r.Dataset},
		[]any{"Generated", r.GeneratedAt.Format("2006-01-02 15:04")},
		[]any{"Filter", r.Filter.String()},
		[]any{},
		[]any{"Step", "Kind", "Amount", "% of Gross"},
	)
	for _, step := range s.Steps {
		values = append(values, []any{
			step.Label,
			string(step.Kind),
			money(step.Amount),
			percent(aggregate.Share(step.Amount, s.Gross)),
		})
	}
	values = append(values,
		[]any{},
		[]any{"Rows", s.RowCount},
		[]any{"Total Income (not in net)", money(s.TotalIncome)},
	)
	return Tab{Title: TabWaterfall, Values: values, MoneyColumns: []int64{2}}
}

func bucketsTab(s aggregate.Summary) Tab {
	values := [][]any{{"Bucket", "Type", "Amount", "Share of Gross"}}
	for _, b := range s.Buckets {
		values = append(values, []any{b.Label, "Discount", money(b.Amount), percent(b.Share)})
	}
	for _, b := range s.RebateBuckets {
		values = append(values, []any{b.Label, "Rebate", money(b.Amount), percent(b.Share)})
	}
	return Tab{Title: TabBuckets, Values: values, MoneyColumns: []int64{2}}
}

func outliersTab(s aggregate.Summary) Tab {
	header := []any{"Name", "Gross", "Discount", "Discount %", "Deviation (pp)", "Flagged"}
	values := [][]any{{"Top customers by discount"}, header}
	for _, o := range s.TopCustomers {
		values = append(values, outlierRow(o))
	}
	values = append(values, []any{}, []any{"Top SKUs by discount"}, header)
	for _, o := range s.TopSKUs {
		values = append(values, outlierRow(o))
	}
	return Tab{Title: TabOutliers, Values: values, MoneyColumns: []int64{1, 2}}
}

func outlierRow(o aggregate.Outlier) []any {
	flag := ""
	if o.Flagged {
		flag = "yes"
	}
	return []any{o.Name, money(o.Gross), money(o.Discount), round(o.DiscountPct, 2), round(o.DeviationPP, 2), flag}
}

func periodsTab(periods []aggregate.PeriodSummary) Tab {
	values := [][]any{{"Period", "Gross", "Discounts", "Invoiced", "Rebates", "Net", "Discount %"}}
	for _, p := range periods {
		values = append(values, []any{
			p.Period,
			money(p.Gross),
			money(p.TotalDiscounts),
			money(p.Invoiced),
			money(p.TotalRebates),
			money(p.Net),
			round(p.DiscountPct, 2),
		})
	}
	return Tab{Title: TabPeriods, Values: values, MoneyColumns: []int64{1, 2, 3, 4, 5}}
}

func scenarioTab(res scenario.Result) Tab {
	values := [][]any{{"Bucket", "Base", "Reduction", "Adjusted", "Saving"}}
	for _, a := range res.Adjustments {
		values = append(values, []any{a.Label, money(a.Base), percent(a.Fraction), money(a.Adjusted), money(a.Saving)})
	}
	values = append(values,
		[]any{},
		[]any{"Base Net Sales", money(res.BaseNet)},
		[]any{"Scenario Net Sales", money(res.Net)},
		[]any{"Uplift", money(res.Uplift)},
	)
	return Tab{Title: TabScenario, Values: values, MoneyColumns: []int64{1, 3, 4}}
}

// money rounds to cents so the sheet never shows float noise.
func money(v float64) float64 {
	return round(v, 2)
}

// percent renders a share as a percentage string with one decimal.
func percent(share float64) string {
	return decimal.NewFromFloat(share).Shift(2).StringFixed(1) + "%"
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
