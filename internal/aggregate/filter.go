package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/model"
)

// Filter selects the active row set. Empty lists match everything; values within a
// list are alternatives and lists combine with AND.
type Filter struct {
	Customers     []string `json:"customers,omitempty"`
	SKUs          []string `json:"skus,omitempty"`
	Periods       []string `json:"periods,omitempty"`
	ProductGroups []string `json:"productGroups,omitempty"`
}

// IsEmpty reports whether the filter selects every row.
func (f Filter) IsEmpty() bool {
	return len(f.Customers) == 0 && len(f.SKUs) == 0 && len(f.Periods) == 0 && len(f.ProductGroups) == 0
}

// String describes the filter for report headers, e.g. "customer: Noord; period: 2024-01".
func (f Filter) String() string {
	if f.IsEmpty() {
		return "all rows"
	}
	var parts []string
	add := func(name string, values []string) {
		if len(values) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(values, ", ")))
		}
	}
	add("customer", f.Customers)
	add("sku", f.SKUs)
	add("period", f.Periods)
	add("group", f.ProductGroups)
	return strings.Join(parts, "; ")
}

// Apply returns the matching rows as a new slice; rows itself is left untouched.
func (f Filter) Apply(rows []model.CanonicalRow) []model.CanonicalRow {
	out := make([]model.CanonicalRow, 0, len(rows))
	for _, row := range rows {
		if f.Matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// Matches reports whether row passes the filter. Comparison ignores case and
// surrounding whitespace.
func (f Filter) Matches(row model.CanonicalRow) bool {
	return anyOf(f.Customers, row.Customer) &&
		anyOf(f.SKUs, row.SKU) &&
		anyOf(f.Periods, row.Period) &&
		anyOf(f.ProductGroups, row.ProductGroup)
}

func anyOf(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), value) {
			return true
		}
	}
	return false
}

// Distinct returns the sorted distinct values of an identity field.
func Distinct(rows []model.CanonicalRow, f model.Field) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		v := row.Text(f)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// PeriodSummary is the aggregate of one period.
type PeriodSummary struct {
	Period string `json:"period"`
	Summary
}

// ByPeriod aggregates each period separately, in ascending period order.
func ByPeriod(rows []model.CanonicalRow, cfg Config) []PeriodSummary {
	periods := Periods(rows)
	out := make([]PeriodSummary, 0, len(periods))
	for _, p := range periods {
		subset := Filter{Periods: []string{p}}.Apply(rows)
		out = append(out, PeriodSummary{Period: p, Summary: Aggregate(subset, cfg)})
	}
	return out
}

// Periods lists the distinct periods of rows in ascending order.
func Periods(rows []model.CanonicalRow) []string {
	return Distinct(rows, model.FieldPeriod)
}
