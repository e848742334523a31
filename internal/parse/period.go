package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SerialThreshold is the smallest number treated as a spreadsheet date serial.
const SerialThreshold = 20000

// MaxSerial is the serial of 3000-01-01; serials from there on are not periods.
const MaxSerial = 401769

// spreadsheet serial day zero
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	yearMonth     = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
	monthYear     = regexp.MustCompile(`^(\d{1,2})[-/](\d{4})$`)
	compactMonth  = regexp.MustCompile(`^(\d{4})(\d{2})$`)
	yearQuarter   = regexp.MustCompile(`(?i)^(\d{4})\s*-?\s*Q([1-4])$`)
	quarterYear   = regexp.MustCompile(`(?i)^Q([1-4])\s*-?\s*(\d{4})$`)
	isoDate       = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	numericSerial = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// NormalizePeriod converts a cell value to "YYYY-MM" or "YYYY-Qn".
//
// It returns the normalized period and true, or the trimmed original text and
// false when no known form matches. Callers keep the original text in that case.
func NormalizePeriod(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case float64:
		return periodFromNumber(t)
	case float32:
		return periodFromNumber(float64(t))
	case int:
		return periodFromNumber(float64(t))
	case int64:
		return periodFromNumber(float64(t))
	case int32:
		return periodFromNumber(float64(t))
	case json.Number:
		return periodFromString(t.String())
	case string:
		return periodFromString(t)
	default:
		return periodFromString(fmt.Sprint(t))
	}
}

func periodFromNumber(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == math.Trunc(f) && f >= 0 && f < 1e6 {
		// 202403 is a compact year-month, not a date in the 26th century.
		if p, ok := compactPeriod(strconv.FormatInt(int64(f), 10)); ok {
			return p, true
		}
	}
	if f > SerialThreshold {
		if p, ok := fromSerial(f); ok {
			return p, true
		}
		return numberText(f), false
	}
	return periodFromString(numberText(f))
}

func numberText(f float64) string {
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func periodFromString(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := yearMonth.FindStringSubmatch(s); m != nil {
		if p, ok := monthPeriod(m[1], m[2]); ok {
			return p, true
		}
	}
	if m := monthYear.FindStringSubmatch(s); m != nil {
		if p, ok := monthPeriod(m[2], m[1]); ok {
			return p, true
		}
	}
	if p, ok := compactPeriod(s); ok {
		return p, true
	}
	if m := yearQuarter.FindStringSubmatch(s); m != nil {
		return m[1] + "-Q" + m[2], true
	}
	if m := quarterYear.FindStringSubmatch(s); m != nil {
		return m[2] + "-Q" + m[1], true
	}
	if m := isoDate.FindStringSubmatch(s); m != nil {
		if p, ok := monthPeriod(m[1], m[2]); ok {
			return p, true
		}
	}
	if numericSerial.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > SerialThreshold {
			if p, ok := fromSerial(f); ok {
				return p, true
			}
		}
	}

	return s, false
}

func compactPeriod(s string) (string, bool) {
	m := compactMonth.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return monthPeriod(m[1], m[2])
}

func monthPeriod(year, month string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1900 || y > 2999 {
		return "", false
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d", y, mo), true
}

// fromSerial converts a date serial, rejecting anything outside the years 1900-2999.
func fromSerial(f float64) (string, bool) {
	if math.IsNaN(f) || f < SerialThreshold || f >= MaxSerial {
		return "", false
	}
	days := int(math.Floor(f))
	return serialEpoch.AddDate(0, 0, days).Format("2006-01"), true
}
