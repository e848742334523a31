package scenario

import (
	"fmt"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/headers"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/shopspring/decimal"
)

var fieldKeys = buildFieldKeys()

// buildFieldKeys indexes every discount and rebate field by id and label. Discounts
// are also reachable by their bare component name ("channel", "volume").
func buildFieldKeys() map[string]model.Field {
	keys := make(map[string]model.Field)
	for _, group := range [][]model.Field{model.RebateFields, model.DiscountFields} {
		for _, f := range group {
			keys[headers.Canonicalize(string(f))] = f
			keys[headers.Canonicalize(f.Label())] = f
		}
	}
	for _, f := range model.DiscountFields {
		keys[headers.Canonicalize(strings.TrimPrefix(string(f), "d_"))] = f
	}
	return keys
}

// LookupField resolves a user-supplied bucket name.
func LookupField(name string) (model.Field, bool) {
	f, ok := fieldKeys[headers.Canonicalize(name)]
	return f, ok
}

// ParseFractions parses "bucket=value" pairs. Values are fractions ("0.1") or
// percentages ("10%"). Range limits are left to Engine.Apply.
func ParseFractions(pairs []string) (Fractions, error) {
	out := make(Fractions, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not bucket=value", common.ErrInvalidFraction, pair)
		}

		f, known := LookupField(name)
		if !known {
			return nil, fmt.Errorf("%w: unknown bucket %q", common.ErrInvalidFraction, strings.TrimSpace(name))
		}

		value, err := parseFraction(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidFraction, strings.TrimSpace(name), err)
		}
		out[f] = value
	}
	return out, nil
}

func parseFraction(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	percent := strings.HasSuffix(raw, "%")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	if percent {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d.InexactFloat64(), nil
}

// Format renders fractions as "bucket=value" pairs in presentation order.
func (f Fractions) Format() []string {
	out := make([]string, 0, len(f))
	for _, field := range append(append([]model.Field{}, model.DiscountFields...), model.RebateFields...) {
		if v, ok := f[field]; ok {
			out = append(out, fmt.Sprintf("%s=%s", field, decimal.NewFromFloat(v).String()))
		}
	}
	return out
}
