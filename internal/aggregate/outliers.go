package aggregate

import (
	"math"
	"sort"

	"github.com/Veraticus/gross-to-net/internal/model"
)

// Outlier is a customer or SKU ranked by discount exposure.
type Outlier struct {
	Name        string  `json:"name"`
	Gross       float64 `json:"gross"`
	Discount    float64 `json:"discount"`
	DiscountPct float64 `json:"discountPct"` // discount as % of its own gross
	DeviationPP float64 `json:"deviationPp"` // DiscountPct minus the overall ratio, in points
	Flagged     bool    `json:"flagged"`
}

type exposure struct {
	gross    float64
	discount float64
}

// topOutliers ranks the values of key by absolute discount amount and annotates the
// first n. An entry is flagged when its deviation exceeds threshold.
func topOutliers(rows []model.CanonicalRow, key model.Field, overallPct float64, n int, threshold float64) []Outlier {
	byName := make(map[string]*exposure)
	for _, row := range rows {
		name := row.Text(key)
		e, ok := byName[name]
		if !ok {
			e = &exposure{}
			byName[name] = e
		}
		e.gross += row.Gross
		e.discount += row.TotalDiscounts()
	}

	out := make([]Outlier, 0, len(byName))
	for name, e := range byName {
		pct := Percent(e.discount, e.gross)
		deviation := pct - overallPct
		out = append(out, Outlier{
			Name:        name,
			Gross:       e.gross,
			Discount:    e.discount,
			DiscountPct: pct,
			DeviationPP: deviation,
			Flagged:     deviation > threshold,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Discount), math.Abs(out[j].Discount)
		if ai != aj {
			return ai > aj
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}
