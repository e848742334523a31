package aggregate

import (
	"math"
	"testing"

	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(customer, sku, period string, amounts map[model.Field]float64) model.CanonicalRow {
	return model.NewCanonicalRow(model.Identity{
		ProductGroup: "Oncology",
		SKU:          sku,
		Customer:     customer,
		Period:       period,
	}, amounts)
}

func sampleRows() []model.CanonicalRow {
	return []model.CanonicalRow{
		row("Apotheek Noord", "ONC-10", "2024-01", map[model.Field]float64{
			model.FieldGross: 1000, model.FieldDiscountChannel: 100, model.FieldDiscountVolume: 50,
			model.FieldRebateDirect: 20,
		}),
		row("Apotheek Zuid", "ONC-20", "2024-02", map[model.Field]float64{
			model.FieldGross: 2000, model.FieldDiscountChannel: 100, model.FieldDiscountCustomer: 300,
			model.FieldRebatePromptPayment: 30, model.FieldIncomeRoyalty: 15,
		}),
		row("Ziekenhuis West", "ONC-10", "2024-01", map[model.Field]float64{
			model.FieldGross: 500, model.FieldDiscountLocal: 10,
		}),
	}
}

func TestAggregate_Totals(t *testing.T) {
	s := Aggregate(sampleRows(), DefaultConfig())

	assert.Equal(t, 3, s.RowCount)
	assert.InDelta(t, 3500, s.Gross, 1e-9)
	assert.InDelta(t, 560, s.TotalDiscounts, 1e-9)
	assert.InDelta(t, 50, s.TotalRebates, 1e-9)
	assert.InDelta(t, 15, s.TotalIncome, 1e-9)
	assert.InDelta(t, 2940, s.Invoiced, 1e-9)
	assert.InDelta(t, 2890, s.Net, 1e-9, "income is not part of the aggregate net")
	assert.InDelta(t, 16, s.DiscountPct, 1e-9)

	channel, ok := s.Bucket(model.FieldDiscountChannel)
	require.True(t, ok)
	assert.InDelta(t, 200, channel.Amount, 1e-9)
	assert.InDelta(t, 200.0/3500.0, channel.Share, 1e-12)

	direct, ok := s.Bucket(model.FieldRebateDirect)
	require.True(t, ok)
	assert.InDelta(t, 20, direct.Amount, 1e-9)
}

func TestAggregate_EmptyRowSet(t *testing.T) {
	s := Aggregate(nil, DefaultConfig())

	assert.Zero(t, s.Gross)
	assert.Zero(t, s.Invoiced)
	assert.Zero(t, s.Net)
	assert.Zero(t, s.DiscountPct)
	require.Len(t, s.Buckets, len(model.DiscountFields))
	for _, b := range append(s.Buckets, s.RebateBuckets...) {
		assert.False(t, math.IsNaN(b.Share) || math.IsInf(b.Share, 0), b.Label)
		assert.Zero(t, b.Share, b.Label)
	}
	assert.NotNil(t, s.TopCustomers)
	assert.Empty(t, s.TopCustomers)
	assert.Empty(t, s.TopSKUs)
}

func TestAggregate_ClampsAtZero(t *testing.T) {
	rows := []model.CanonicalRow{
		row("A", "1", "2024-01", map[model.Field]float64{
			model.FieldGross: 100, model.FieldDiscountChannel: 150, model.FieldRebateDirect: 10,
		}),
	}

	s := Aggregate(rows, DefaultConfig())

	assert.Zero(t, s.Invoiced)
	assert.Zero(t, s.Net)
}

func TestAggregate_StepOrder(t *testing.T) {
	s := Aggregate(sampleRows(), DefaultConfig())

	require.Len(t, s.Steps, 1+len(model.DiscountFields)+1+len(model.RebateFields)+1)

	assert.Equal(t, model.StepStart, s.Steps[0].Kind)
	assert.Equal(t, model.FieldGross, s.Steps[0].Field)
	assert.InDelta(t, 3500, s.Steps[0].Amount, 1e-9)

	for i, f := range model.DiscountFields {
		step := s.Steps[1+i]
		assert.Equal(t, f, step.Field)
		assert.Equal(t, model.StepDecrement, step.Kind)
		assert.LessOrEqual(t, step.Amount, 0.0)
	}
	assert.InDelta(t, -200, s.Steps[1].Amount, 1e-9)

	invoiced := s.Steps[1+len(model.DiscountFields)]
	assert.Equal(t, model.StepSubtotal, invoiced.Kind)
	assert.Equal(t, model.FieldInvoiced, invoiced.Field)
	assert.InDelta(t, 2940, invoiced.Amount, 1e-9)

	last := s.Steps[len(s.Steps)-1]
	assert.Equal(t, model.StepSubtotal, last.Kind)
	assert.Equal(t, model.FieldNet, last.Field)
	assert.InDelta(t, 2890, last.Amount, 1e-9)
}

func TestAggregate_EmptyBucketStepIsPositiveZero(t *testing.T) {
	s := Aggregate(sampleRows(), DefaultConfig())

	for _, step := range s.Steps {
		if step.Field == model.FieldDiscountValue {
			assert.False(t, math.Signbit(step.Amount))
		}
	}
}

func TestAggregate_BucketsSortedByAmount(t *testing.T) {
	s := Aggregate(sampleRows(), DefaultConfig())

	require.Len(t, s.Buckets, len(model.DiscountFields))
	assert.Equal(t, model.FieldDiscountCustomer, s.Buckets[0].Field)
	assert.Equal(t, model.FieldDiscountChannel, s.Buckets[1].Field)
	assert.Equal(t, model.FieldDiscountVolume, s.Buckets[2].Field)
	for i := 1; i < len(s.Buckets); i++ {
		assert.GreaterOrEqual(t, math.Abs(s.Buckets[i-1].Amount), math.Abs(s.Buckets[i].Amount))
	}

	for i, f := range model.RebateFields {
		assert.Equal(t, f, s.RebateBuckets[i].Field, "rebates stay in presentation order")
	}
}

func TestAggregate_Outliers(t *testing.T) {
	s := Aggregate(sampleRows(), DefaultConfig())

	require.Len(t, s.TopCustomers, 3)
	assert.Equal(t, "Apotheek Zuid", s.TopCustomers[0].Name)
	assert.InDelta(t, 400, s.TopCustomers[0].Discount, 1e-9)
	assert.InDelta(t, 20, s.TopCustomers[0].DiscountPct, 1e-9)
	assert.InDelta(t, 4, s.TopCustomers[0].DeviationPP, 1e-9)
	for _, c := range s.TopCustomers {
		assert.False(t, c.Flagged, "customers are ranked but never flagged")
	}

	require.Len(t, s.TopSKUs, 2)
	assert.Equal(t, "ONC-20", s.TopSKUs[0].Name)
	assert.Equal(t, "ONC-10", s.TopSKUs[1].Name)
	assert.InDelta(t, 160, s.TopSKUs[1].Discount, 1e-9)
	assert.False(t, s.TopSKUs[0].Flagged, "4pp is under the 5pp threshold")

	strict := Aggregate(sampleRows(), Config{TopN: 1, SKUFlagThreshold: 3})
	require.Len(t, strict.TopSKUs, 1)
	assert.True(t, strict.TopSKUs[0].Flagged)
	require.Len(t, strict.TopCustomers, 1)
}

func TestAggregate_OutlierTiesBreakByName(t *testing.T) {
	rows := []model.CanonicalRow{
		row("Beta", "1", "2024-01", map[model.Field]float64{model.FieldGross: 100, model.FieldDiscountChannel: 10}),
		row("Alpha", "2", "2024-01", map[model.Field]float64{model.FieldGross: 100, model.FieldDiscountChannel: 10}),
	}

	s := Aggregate(rows, DefaultConfig())

	require.Len(t, s.TopCustomers, 2)
	assert.Equal(t, "Alpha", s.TopCustomers[0].Name)
	assert.Equal(t, "Beta", s.TopCustomers[1].Name)
}

func TestAggregate_DoesNotMutateRows(t *testing.T) {
	rows := sampleRows()
	before := append([]model.CanonicalRow(nil), rows...)

	Aggregate(rows, DefaultConfig())

	assert.Equal(t, before, rows)
}

func TestFilter_Apply(t *testing.T) {
	rows := sampleRows()

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{name: "empty filter keeps all", filter: Filter{}, want: 3},
		{name: "customer case-insensitive", filter: Filter{Customers: []string{"apotheek noord"}}, want: 1},
		{name: "sku alternatives", filter: Filter{SKUs: []string{"ONC-10", "ONC-20"}}, want: 3},
		{name: "period and sku combine", filter: Filter{SKUs: []string{"ONC-10"}, Periods: []string{"2024-01"}}, want: 2},
		{name: "no match", filter: Filter{ProductGroups: []string{"Vaccines"}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(rows)
			assert.Len(t, got, tt.want)
			assert.NotNil(t, got)
		})
	}

	assert.Len(t, rows, 3, "base row set is untouched")
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{Periods: []string{"2024-01"}}.IsEmpty())
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "all rows", Filter{}.String())
	assert.Equal(t, "customer: Noord, Zuid; group: Oncology",
		Filter{Customers: []string{"Noord", "Zuid"}, ProductGroups: []string{"Oncology"}}.String())
}

func TestPeriodsAndByPeriod(t *testing.T) {
	rows := sampleRows()

	assert.Equal(t, []string{"2024-01", "2024-02"}, Periods(rows))

	summaries := ByPeriod(rows, DefaultConfig())
	require.Len(t, summaries, 2)
	assert.Equal(t, "2024-01", summaries[0].Period)
	assert.InDelta(t, 1500, summaries[0].Gross, 1e-9)
	assert.Equal(t, 2, summaries[0].RowCount)
	assert.Equal(t, "2024-02", summaries[1].Period)
	assert.InDelta(t, 2000, summaries[1].Gross, 1e-9)
}

func TestDerive(t *testing.T) {
	invoiced, net := Derive(1000, 200, 100)
	assert.InDelta(t, 800, invoiced, 1e-9)
	assert.InDelta(t, 700, net, 1e-9)

	invoiced, net = Derive(100, 50, 80)
	assert.InDelta(t, 50, invoiced, 1e-9)
	assert.Zero(t, net)
}
