// Package parse converts loosely formatted spreadsheet cells into numbers and
// canonical period strings. Nothing in this package returns an error: unreadable
// input degrades to zero or to the original text.
package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// 1.234.567,89 and 1.234
	europeanGrouped = regexp.MustCompile(`^[1-9]\d{0,2}(\.\d{3})+(,\d+)?$`)
	// 1,234,567.89 and 1,234
	usGrouped = regexp.MustCompile(`^[1-9]\d{0,2}(,\d{3})+(\.\d+)?$`)
)

// ParseNumber converts a cell value to a float64.
//
// Blank cells are 0, accounting negatives such as "(123)" are -123 (a minus sign
// inside the parentheses does not flip it back), and both
// European ("1.234,56") and US ("1,234.56") grouping are understood. When the
// grouping is not clean, the rightmost comma or dot is taken as the decimal
// separator. Anything that still cannot be read yields 0.
func ParseNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case json.Number:
		return parseText(t.String())
	case string:
		return parseText(t)
	default:
		return parseText(fmt.Sprint(t))
	}
}

func parseText(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	switch {
	case strings.HasPrefix(cleaned, "-"):
		negative = true
		cleaned = cleaned[1:]
	case strings.HasSuffix(cleaned, "-"):
		// SAP-style trailing minus: "1.234,00-"
		negative = true
		cleaned = cleaned[:len(cleaned)-1]
	}
	if cleaned == "" || strings.Contains(cleaned, "-") {
		return 0
	}

	d, err := decimal.NewFromString(normalizeSeparators(cleaned))
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if negative {
		f = -f
	}
	return finite(f)
}

// normalizeSeparators rewrites a digits/comma/dot string into plain "1234.56" form.
func normalizeSeparators(s string) string {
	switch {
	case europeanGrouped.MatchString(s):
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case usGrouped.MatchString(s):
		return strings.ReplaceAll(s, ",", "")
	}

	decimalAt := strings.LastIndexAny(s, ",.")
	if decimalAt < 0 {
		return s
	}
	intPart := strings.NewReplacer(",", "", ".", "").Replace(s[:decimalAt])
	fracPart := strings.NewReplacer(",", "", ".", "").Replace(s[decimalAt+1:])
	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
