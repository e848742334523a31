package parse

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input any
		name  string
		want  float64
	}{
		{name: "european grouping", input: "1.234,56", want: 1234.56},
		{name: "us grouping", input: "1,234,567.89", want: 1234567.89},
		{name: "us grouping short", input: "1,234.56", want: 1234.56},
		{name: "european millions", input: "1.234.567,89", want: 1234567.89},
		{name: "european thousands only", input: "12.345", want: 12345},
		{name: "accounting negative", input: "(123)", want: -123},
		{name: "accounting negative with currency", input: "(€ 1.500,00)", want: -1500},
		{name: "accounting parentheses around minus", input: "(-123)", want: -123},
		{name: "accounting parentheses around trailing minus", input: "(123-)", want: -123},
		{name: "leading minus", input: "-42.5", want: -42.5},
		{name: "trailing minus", input: "1.234,00-", want: -1234},
		{name: "empty string", input: "", want: 0},
		{name: "whitespace", input: "   ", want: 0},
		{name: "nil", input: nil, want: 0},
		{name: "currency symbol", input: "$ 2,500", want: 2500},
		{name: "plain decimal comma", input: "1234,5", want: 1234.5},
		{name: "plain decimal dot", input: "1234.5", want: 1234.5},
		{name: "leading zero is not a thousands group", input: "0.250", want: 0.25},
		{name: "messy separators use rightmost as decimal", input: "1.2.3,45", want: 123.45},
		{name: "trailing separator", input: "100.", want: 100},
		{name: "garbage", input: "n/a", want: 0},
		{name: "embedded minus", input: "12-34", want: 0},
		{name: "float value", input: 99.5, want: 99.5},
		{name: "int value", input: 42, want: 42},
		{name: "json number", input: json.Number("1,000.25"), want: 1000.25},
		{name: "nan value", input: math.NaN(), want: 0},
		{name: "infinite value", input: math.Inf(1), want: 0},
		{name: "percent sign", input: "12.5%", want: 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseNumber(tt.input), 1e-9)
		})
	}
}

func TestNormalizePeriod(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   string
		wantOK bool
	}{
		{name: "year month dash", input: "2024-03", want: "2024-03", wantOK: true},
		{name: "year month slash single digit", input: "2024/3", want: "2024-03", wantOK: true},
		{name: "month year dash", input: "03-2024", want: "2024-03", wantOK: true},
		{name: "month year slash", input: "11/2023", want: "2023-11", wantOK: true},
		{name: "compact", input: "202412", want: "2024-12", wantOK: true},
		{name: "year quarter", input: "2024-Q2", want: "2024-Q2", wantOK: true},
		{name: "quarter space year", input: "Q2 2024", want: "2024-Q2", wantOK: true},
		{name: "compact year quarter lower", input: "2024q4", want: "2024-Q4", wantOK: true},
		{name: "compact quarter year", input: "Q12025", want: "2025-Q1", wantOK: true},
		{name: "iso date", input: "2024-03-15", want: "2024-03", wantOK: true},
		{name: "serial number", input: 45366.0, want: "2024-03", wantOK: true},
		{name: "serial string", input: "45292", want: "2024-01", wantOK: true},
		{name: "numeric compact", input: 202403, want: "2024-03", wantOK: true},
		{name: "padded", input: "  2024-07  ", want: "2024-07", wantOK: true},
		{name: "invalid month", input: "2024-13", want: "2024-13", wantOK: false},
		{name: "quarter five", input: "2024-Q5", want: "2024-Q5", wantOK: false},
		{name: "not a date", input: "not-a-date", want: "not-a-date", wantOK: false},
		{name: "small number", input: 42.0, want: "42", wantOK: false},
		{name: "last serial before year 3000", input: 401768.0, want: "2999-12", wantOK: true},
		{name: "serial in year 3000", input: 401769.0, want: "401769", wantOK: false},
		{name: "amount as serial", input: 3e6, want: "3000000", wantOK: false},
		{name: "huge amount", input: 1e12, want: "1000000000000", wantOK: false},
		{name: "overflowing amount", input: 1e300, want: "1e+300", wantOK: false},
		{name: "amount string", input: "3000000", want: "3000000", wantOK: false},
		{name: "serial string past 9999", input: "2958466", want: "2958466", wantOK: false},
		{name: "empty", input: "", want: "", wantOK: false},
		{name: "nil", input: nil, want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePeriod(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
