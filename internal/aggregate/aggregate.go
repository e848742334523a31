// Package aggregate folds canonical rows into bucket totals, waterfall steps and
// discount outliers. Everything is recomputed from scratch on each call.
package aggregate

import (
	"math"
	"sort"

	"github.com/Veraticus/gross-to-net/internal/model"
)

// Defaults for outlier detection.
const (
	DefaultTopN             = 3
	DefaultSKUFlagThreshold = 5.0 // percentage points above the overall discount ratio
)

// Config controls outlier detection.
type Config struct {
	TopN             int
	SKUFlagThreshold float64
}

// DefaultConfig returns the standard aggregation settings.
func DefaultConfig() Config {
	return Config{TopN: DefaultTopN, SKUFlagThreshold: DefaultSKUFlagThreshold}
}

// Summary is the aggregate view of an active row set.
type Summary struct {
	Buckets        []model.BucketTotal   `json:"buckets"`
	RebateBuckets  []model.BucketTotal   `json:"rebateBuckets"`
	Steps          []model.WaterfallStep `json:"steps"`
	TopCustomers   []Outlier             `json:"topCustomers"`
	TopSKUs        []Outlier             `json:"topSkus"`
	Gross          float64               `json:"gross"`
	TotalDiscounts float64               `json:"totalDiscounts"`
	TotalRebates   float64               `json:"totalRebates"`
	TotalIncome    float64               `json:"totalIncome"`
	Invoiced       float64               `json:"invoiced"`
	Net            float64               `json:"net"`
	DiscountPct    float64               `json:"discountPct"` // total discounts as % of gross
	RowCount       int                   `json:"rowCount"`
}

// Bucket returns the discount or rebate bucket for f.
func (s Summary) Bucket(f model.Field) (model.BucketTotal, bool) {
	for _, group := range [][]model.BucketTotal{s.Buckets, s.RebateBuckets} {
		for _, b := range group {
			if b.Field == f {
				return b, true
			}
		}
	}
	return model.BucketTotal{}, false
}

// Aggregate computes the summary of rows. rows is only read.
func Aggregate(rows []model.CanonicalRow, cfg Config) Summary {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}

	discounts := make(map[model.Field]float64, len(model.DiscountFields))
	rebates := make(map[model.Field]float64, len(model.RebateFields))
	s := Summary{RowCount: len(rows)}

	for _, row := range rows {
		s.Gross += row.Gross
		for _, f := range model.DiscountFields {
			discounts[f] += row.Amount(f)
		}
		for _, f := range model.RebateFields {
			rebates[f] += row.Amount(f)
		}
		s.TotalIncome += row.TotalIncome()
	}

	for _, f := range model.DiscountFields {
		s.TotalDiscounts += discounts[f]
	}
	for _, f := range model.RebateFields {
		s.TotalRebates += rebates[f]
	}

	s.Invoiced, s.Net = Derive(s.Gross, s.TotalDiscounts, s.TotalRebates)
	s.DiscountPct = Percent(s.TotalDiscounts, s.Gross)

	inOrder := Buckets(model.DiscountFields, discounts, s.Gross)
	s.RebateBuckets = Buckets(model.RebateFields, rebates, s.Gross)
	s.Steps = BuildSteps(s.Gross, inOrder, s.Invoiced, s.RebateBuckets, s.Net)
	s.Buckets = SortByAmount(inOrder)

	s.TopCustomers = topOutliers(rows, model.FieldCustomer, s.DiscountPct, cfg.TopN, math.Inf(1))
	s.TopSKUs = topOutliers(rows, model.FieldSKU, s.DiscountPct, cfg.TopN, cfg.SKUFlagThreshold)

	return s
}

// Derive computes invoiced and net from grand totals, floored at zero.
func Derive(gross, totalDiscounts, totalRebates float64) (invoiced, net float64) {
	invoiced = math.Max(0, gross-totalDiscounts)
	net = math.Max(0, invoiced-totalRebates)
	return invoiced, net
}

// Share returns amount / gross, or 0 when gross is 0.
func Share(amount, gross float64) float64 {
	if gross == 0 {
		return 0
	}
	return amount / gross
}

// Percent returns amount as a percentage of gross, or 0 when gross is 0.
func Percent(amount, gross float64) float64 {
	return Share(amount, gross) * 100
}

// Buckets builds bucket totals for fields in the given order.
func Buckets(fields []model.Field, amounts map[model.Field]float64, gross float64) []model.BucketTotal {
	out := make([]model.BucketTotal, 0, len(fields))
	for _, f := range fields {
		out = append(out, model.BucketTotal{
			Field:  f,
			Label:  f.Label(),
			Amount: amounts[f],
			Share:  Share(amounts[f], gross),
		})
	}
	return out
}

// SortByAmount returns a copy of buckets ordered by descending absolute amount.
// Ties keep presentation order.
func SortByAmount(buckets []model.BucketTotal) []model.BucketTotal {
	out := make([]model.BucketTotal, len(buckets))
	copy(out, buckets)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Amount) > math.Abs(out[j].Amount)
	})
	return out
}

// BuildSteps lays out the bridge: gross, each discount, invoiced, each rebate, net.
// Discounts and rebates are emitted in presentation order regardless of the order
// of the slices passed in.
func BuildSteps(gross float64, discounts []model.BucketTotal, invoiced float64, rebates []model.BucketTotal, net float64) []model.WaterfallStep {
	steps := make([]model.WaterfallStep, 0, len(model.DiscountFields)+len(model.RebateFields)+3)
	steps = append(steps, model.WaterfallStep{
		Label: model.FieldGross.Label(), Kind: model.StepStart, Field: model.FieldGross, Amount: gross,
	})
	steps = appendDecrements(steps, model.DiscountFields, discounts)
	steps = append(steps, model.WaterfallStep{
		Label: model.FieldInvoiced.Label(), Kind: model.StepSubtotal, Field: model.FieldInvoiced, Amount: invoiced,
	})
	steps = appendDecrements(steps, model.RebateFields, rebates)
	return append(steps, model.WaterfallStep{
		Label: model.FieldNet.Label(), Kind: model.StepSubtotal, Field: model.FieldNet, Amount: net,
	})
}

func appendDecrements(steps []model.WaterfallStep, order []model.Field, buckets []model.BucketTotal) []model.WaterfallStep {
	amounts := make(map[model.Field]float64, len(buckets))
	for _, b := range buckets {
		amounts[b.Field] = b.Amount
	}
	for _, f := range order {
		steps = append(steps, model.WaterfallStep{
			Label:  f.Label(),
			Kind:   model.StepDecrement,
			Field:  f,
			Amount: negate(amounts[f]),
		})
	}
	return steps
}

// negate avoids emitting -0 for empty buckets.
func negate(v float64) float64 {
	if v == 0 {
		return 0
	}
	return -v
}
