// Package scenario recomputes the waterfall under hypothetical discount reductions.
// It works on aggregate summaries only and never sees or changes canonical rows.
package scenario

import (
	"math"
	"sort"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/model"
)

// DefaultMaxFraction caps any single bucket reduction.
const DefaultMaxFraction = 0.20

// Fractions maps discount fields to a reduction in [0, MaxFraction].
type Fractions map[model.Field]float64

// Clone returns an independent copy.
func (f Fractions) Clone() Fractions {
	out := make(Fractions, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Engine applies reduction fractions to a baseline summary.
type Engine struct {
	MaxFraction float64
}

// DefaultEngine returns an engine with the standard cap.
func DefaultEngine() Engine {
	return Engine{MaxFraction: DefaultMaxFraction}
}

// Adjustment describes the effect of a reduction on one discount bucket.
type Adjustment struct {
	Field    model.Field `json:"field"`
	Label    string      `json:"label"`
	Base     float64     `json:"base"`
	Fraction float64     `json:"fraction"`
	Adjusted float64     `json:"adjusted"`
	Saving   float64     `json:"saving"`
}

// Result is a scenario next to the baseline it was derived from.
type Result struct {
	Adjustments    []Adjustment          `json:"adjustments"` // presentation order
	Buckets        []model.BucketTotal   `json:"buckets"`     // adjusted, sorted by amount
	RebateBuckets  []model.BucketTotal   `json:"rebateBuckets"`
	Steps          []model.WaterfallStep `json:"steps"`
	Applied        Fractions             `json:"applied"`
	Clamped        []model.Field         `json:"clamped,omitempty"`
	Ignored        []model.Field         `json:"ignored,omitempty"`
	Gross          float64               `json:"gross"`
	TotalDiscounts float64               `json:"totalDiscounts"`
	TotalRebates   float64               `json:"totalRebates"`
	Invoiced       float64               `json:"invoiced"`
	Net            float64               `json:"net"`
	BaseInvoiced   float64               `json:"baseInvoiced"`
	BaseNet        float64               `json:"baseNet"`
	Uplift         float64               `json:"uplift"`
}

// Apply computes the scenario for fractions against base. base is not modified and
// a nil or empty fractions map reproduces the baseline.
func (e Engine) Apply(base aggregate.Summary, fractions Fractions) Result {
	maxFraction := e.MaxFraction
	if maxFraction <= 0 || math.IsNaN(maxFraction) {
		maxFraction = DefaultMaxFraction
	}

	res := Result{
		Applied:      Fractions{},
		Gross:        base.Gross,
		TotalRebates: base.TotalRebates,
		BaseInvoiced: base.Invoiced,
		BaseNet:      base.Net,
	}

	for f := range fractions {
		if !f.IsDiscount() {
			res.Ignored = append(res.Ignored, f)
		}
	}
	sort.Slice(res.Ignored, func(i, j int) bool { return res.Ignored[i] < res.Ignored[j] })

	adjusted := make(map[model.Field]float64, len(model.DiscountFields))
	res.Adjustments = make([]Adjustment, 0, len(model.DiscountFields))
	for _, f := range model.DiscountFields {
		bucket, _ := base.Bucket(f)
		fraction, clamped := clamp(fractions[f], maxFraction)
		if clamped {
			res.Clamped = append(res.Clamped, f)
		}
		if fraction > 0 {
			res.Applied[f] = fraction
		}

		amount := bucket.Amount * (1 - fraction)
		adjusted[f] = amount
		res.TotalDiscounts += amount
		res.Adjustments = append(res.Adjustments, Adjustment{
			Field:    f,
			Label:    f.Label(),
			Base:     bucket.Amount,
			Fraction: fraction,
			Adjusted: amount,
			Saving:   bucket.Amount - amount,
		})
	}

	res.Invoiced, res.Net = aggregate.Derive(base.Gross, res.TotalDiscounts, base.TotalRebates)
	res.Uplift = res.Net - base.Net

	inOrder := aggregate.Buckets(model.DiscountFields, adjusted, base.Gross)
	res.RebateBuckets = append([]model.BucketTotal(nil), base.RebateBuckets...)
	res.Steps = aggregate.BuildSteps(res.Gross, inOrder, res.Invoiced, res.RebateBuckets, res.Net)
	res.Buckets = aggregate.SortByAmount(inOrder)

	return res
}

// clamp bounds v to [0, limit] and reports whether it had to move.
func clamp(v, limit float64) (float64, bool) {
	switch {
	case math.IsNaN(v):
		return 0, true
	case v < 0:
		return 0, true
	case v > limit:
		return limit, true
	default:
		return v, false
	}
}
