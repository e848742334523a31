package cli

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NumberFormat controls how amounts are printed. The core pipeline never formats
// numbers; presentation settings live here only.
type NumberFormat struct {
	Currency    string
	Thousands   string
	DecimalMark string
	Decimals    int
}

// DefaultNumberFormat prints whole euros with comma grouping.
func DefaultNumberFormat() NumberFormat {
	return NumberFormat{Currency: "€", Thousands: ",", DecimalMark: ".", Decimals: 0}
}

// groupPrinter groups digits in threes; the separator is swapped for
// NumberFormat.Thousands afterwards.
var groupPrinter = message.NewPrinter(language.English)

// FormatAmount renders v as e.g. "-€1,234".
func FormatAmount(v float64, f NumberFormat) string {
	places := int32(max(f.Decimals, 0))
	d := decimal.NewFromFloat(v).Round(places)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	_, frac, _ := strings.Cut(d.StringFixed(places), ".")
	whole := groupPrinter.Sprintf("%d", d.IntPart())
	whole = strings.ReplaceAll(whole, ",", f.Thousands)

	out := sign + f.Currency + whole
	if frac != "" {
		mark := f.DecimalMark
		if mark == "" {
			mark = "."
		}
		out += mark + frac
	}
	return out
}

// FormatPercent renders a percentage value (16 -> "16.0%").
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}

// FormatShare renders a ratio as a percentage (0.16 -> "16.0%").
func FormatShare(share float64) string {
	return FormatPercent(share * 100)
}
