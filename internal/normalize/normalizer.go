// Package normalize turns decoded spreadsheet records into canonical gross-to-net rows.
//
// The pass never fails with a Go error. Problems with individual cells become
// warnings and the row is kept; only an uninterpretable header row aborts the
// upload, reported through ValidationResult.Errors.
package normalize

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/headers"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/parse"
)

// FirstDataRow is the spreadsheet line number of the first record, after the header.
const FirstDataRow = 2

// Normalizer validates and normalizes uploads.
type Normalizer struct {
	logger    *slog.Logger
	tolerance Tolerance
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTolerance overrides the balance tolerance.
func WithTolerance(t Tolerance) Option {
	return func(n *Normalizer) {
		n.tolerance = t
	}
}

// WithLogger sets the logger used for the per-upload summary.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// New creates a Normalizer with the default tolerance.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{tolerance: DefaultTolerance()}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

// ValidateAndNormalize runs the default Normalizer over records.
func ValidateAndNormalize(records []model.Record) model.ValidationResult {
	return New().ValidateAndNormalize(records)
}

// ValidateAndNormalize converts records into canonical rows. Headers are resolved
// once from the keys of the first record.
func (n *Normalizer) ValidateAndNormalize(records []model.Record) model.ValidationResult {
	c := newCollector()

	if len(records) == 0 {
		c.note("No data rows found in the upload.")
		return c.result(nil)
	}

	res := headers.Resolve(recordKeys(records[0]))
	if missing := res.MissingStringFields(); len(missing) > 0 {
		c.fatal(fmt.Sprintf("Missing required column(s): %s.", strings.Join(headers.Labels(missing), ", ")))
	}
	if res.MissingGross() {
		c.fatal(fmt.Sprintf("Missing required column: %s.", model.FieldGross.Label()))
	}
	if c.failed() {
		n.logger.Debug("upload rejected", "errors", len(c.errors))
		return c.result(nil)
	}

	rows := make([]model.CanonicalRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, n.normalizeRow(rec, i+FirstDataRow, res, c))
	}

	result := c.result(rows)
	n.logger.Debug("normalized upload",
		"rows", len(result.Rows),
		"warnings", len(result.Warnings),
		"corrected", result.CorrectedCount)
	return result
}

func (n *Normalizer) normalizeRow(rec model.Record, line int, res headers.Resolution, c *collector) model.CanonicalRow {
	id := model.Identity{
		ProductGroup: textValue(rec, res, model.FieldProductGroup),
		SKU:          textValue(rec, res, model.FieldSKU),
		Customer:     textValue(rec, res, model.FieldCustomer),
	}

	var rawPeriod any
	if col, ok := res.Column(model.FieldPeriod); ok {
		rawPeriod = rec[col]
	}
	period, ok := parse.NormalizePeriod(rawPeriod)
	switch {
	case ok:
	case period == "":
		c.warn(line, "period is empty")
	default:
		c.warn(line, "unrecognized period %q kept as-is", period)
	}
	id.Period = period

	amounts := make(map[model.Field]float64, len(model.NumericFields))
	for _, f := range model.NumericFields {
		if col, ok := res.Column(f); ok {
			amounts[f] = parse.ParseNumber(rec[col])
		}
	}

	var flipped []string
	for _, group := range [][]model.Field{model.DiscountFields, model.RebateFields} {
		for _, f := range group {
			if amounts[f] < 0 {
				amounts[f] = -amounts[f]
				c.corrected++
				flipped = append(flipped, f.Label())
			}
		}
	}
	if len(flipped) > 0 {
		c.warn(line, "negative values corrected to positive for %s", strings.Join(flipped, ", "))
	}

	totalDiscounts := sum(amounts, model.DiscountFields)
	totalRebates := sum(amounts, model.RebateFields)
	totalIncome := sum(amounts, model.IncomeFields)
	gross := amounts[model.FieldGross]

	expectedInvoiced := gross - totalDiscounts
	if amounts[model.FieldInvoiced] == 0 && (gross != 0 || totalDiscounts != 0) {
		amounts[model.FieldInvoiced] = expectedInvoiced
		c.corrected++
		c.warn(line, "%s missing; derived as %s (gross minus discounts)",
			model.FieldInvoiced.Label(), formatAmount(expectedInvoiced))
	}
	invoiced := amounts[model.FieldInvoiced]

	expectedNet := invoiced - totalRebates + totalIncome
	if amounts[model.FieldNet] == 0 && (invoiced != 0 || totalRebates != 0 || totalIncome != 0) {
		amounts[model.FieldNet] = expectedNet
		c.corrected++
		c.warn(line, "%s missing; derived as %s (invoiced minus rebates plus income)",
			model.FieldNet.Label(), formatAmount(expectedNet))
	}
	net := amounts[model.FieldNet]

	if !BalanceCheck(invoiced, expectedInvoiced, n.tolerance) {
		c.warn(line, "%s %s does not reconcile with gross minus discounts %s (difference %s)",
			model.FieldInvoiced.Label(), formatAmount(invoiced), formatAmount(expectedInvoiced),
			formatAmount(invoiced-expectedInvoiced))
	}
	if !BalanceCheck(net, expectedNet, n.tolerance) {
		c.warn(line, "%s %s does not reconcile with invoiced minus rebates plus income %s (difference %s)",
			model.FieldNet.Label(), formatAmount(net), formatAmount(expectedNet),
			formatAmount(net-expectedNet))
	}

	return model.NewCanonicalRow(id, amounts)
}

func textValue(rec model.Record, res headers.Resolution, f model.Field) string {
	col, ok := res.Column(f)
	if !ok {
		return ""
	}
	switch v := rec[col].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func recordKeys(rec model.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sum(amounts map[model.Field]float64, fields []model.Field) float64 {
	total := 0.0
	for _, f := range fields {
		total += amounts[f]
	}
	return total
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
