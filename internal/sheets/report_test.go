package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(t *testing.T) Report {
	t.Helper()
	rows := []model.CanonicalRow{
		model.NewCanonicalRow(model.Identity{Customer: "Noord", SKU: "ONC-10", Period: "2024-01"}, map[model.Field]float64{
			model.FieldGross: 1000, model.FieldDiscountChannel: 100.004, model.FieldRebateDirect: 50,
		}),
		model.NewCanonicalRow(model.Identity{Customer: "Zuid", SKU: "ONC-20", Period: "2024-02"}, map[model.Field]float64{
			model.FieldGross: 3000, model.FieldDiscountVolume: 600,
		}),
	}
	cfg := aggregate.DefaultConfig()
	return Report{
		Title:       "Waterfall",
		Dataset:     "March upload",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:     aggregate.Aggregate(rows, cfg),
		Periods:     aggregate.ByPeriod(rows, cfg),
	}
}

func tabByTitle(tabs []Tab, title string) (Tab, bool) {
	for _, tab := range tabs {
		if tab.Title == title {
			return tab, true
		}
	}
	return Tab{}, false
}

func TestPrepareTabs_Baseline(t *testing.T) {
	tabs := PrepareTabs(testReport(t))

	titles := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		titles = append(titles, tab.Title)
	}
	assert.Equal(t, []string{TabWaterfall, TabBuckets, TabOutliers, TabPeriods}, titles)

	waterfall := tabs[0]
	assert.Equal(t, []any{"Waterfall", "March upload"}, waterfall.Values[0])
	assert.Equal(t, []any{"Filter", "all rows"}, waterfall.Values[2])
	assert.Equal(t, []any{"Gross Sales", "start", 4000.0, "100.0%"}, waterfall.Values[5])
	assert.Equal(t, []any{"Channel Discount", "decrement", -100.0, "-2.5%"}, waterfall.Values[6],
		"amounts are rounded to cents")
}

func TestPrepareTabs_Buckets(t *testing.T) {
	tab, ok := tabByTitle(PrepareTabs(testReport(t)), TabBuckets)
	require.True(t, ok)

	require.Len(t, tab.Values, 1+len(model.DiscountFields)+len(model.RebateFields))
	assert.Equal(t, []any{"Volume Discount", "Discount", 600.0, "15.0%"}, tab.Values[1])
	assert.Equal(t, "Rebate", tab.Values[1+len(model.DiscountFields)][1])
}

func TestPrepareTabs_Scenario(t *testing.T) {
	report := testReport(t)
	res := scenario.DefaultEngine().Apply(report.Summary, scenario.Fractions{model.FieldDiscountVolume: 0.1})
	report.Scenario = &res

	tab, ok := tabByTitle(PrepareTabs(report), TabScenario)
	require.True(t, ok)

	last := tab.Values[len(tab.Values)-1]
	assert.Equal(t, []any{"Uplift", 60.0}, last)
}

func TestPrepareTabs_SinglePeriodHasNoPeriodTab(t *testing.T) {
	report := testReport(t)
	report.Periods = report.Periods[:1]
	report.Filter = aggregate.Filter{Customers: []string{"Noord"}, Periods: []string{"2024-01"}}

	tabs := PrepareTabs(report)

	_, ok := tabByTitle(tabs, TabPeriods)
	assert.False(t, ok)
	assert.Equal(t, []any{"Filter", "customer: Noord; period: 2024-01"}, tabs[0].Values[2])
}

func TestFormattingRequests(t *testing.T) {
	tab := Tab{Title: "x", Values: [][]any{{"a", "b", "c"}, {1, 2}}, MoneyColumns: []int64{1, 2}}

	requests := formattingRequests(42, tab, "€#,##0")

	require.Len(t, requests, 1+2+2)
	assert.Equal(t, int64(42), requests[0].RepeatCell.Range.SheetId)
	assert.Equal(t, "€#,##0", requests[1].RepeatCell.Cell.UserEnteredFormat.NumberFormat.Pattern)
	assert.Equal(t, int64(2), requests[2].RepeatCell.Range.StartColumnIndex)
	assert.Equal(t, int64(3), requests[3].AutoResizeDimensions.Dimensions.EndIndex)
}

func TestMissingTabs(t *testing.T) {
	got := missingTabs(map[string]int64{"Waterfall": 0, "Sheet1": 1}, []string{"Waterfall", "Buckets"})
	assert.Equal(t, []string{"Buckets"}, got)
}

func TestMockWriter(t *testing.T) {
	mock := NewMockWriter()
	report := testReport(t)

	id, err := mock.Write(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, "mock-spreadsheet", id)

	boom := errors.New("quota exceeded")
	mock.SetWriteError(boom)
	_, err = mock.Write(context.Background(), report)
	assert.ErrorIs(t, err, boom)

	calls := mock.GetWriteCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "March upload", calls[0].Report.Dataset)
	assert.ErrorIs(t, calls[1].Error, boom)
	assert.Equal(t, 2, mock.WriteCallCount)
}
