package model

import "time"

// ValidationResult is everything a normalization pass produces. Errors is non-empty
// only when the upload could not be interpreted at all, in which case Rows is empty.
type ValidationResult struct {
	Rows           []CanonicalRow `json:"rows"`
	Warnings       []string       `json:"warnings"`
	Errors         []string       `json:"errors"`
	CorrectedCount int            `json:"correctedCount"`
}

// Failed reports whether the pass aborted with fatal errors.
func (v ValidationResult) Failed() bool {
	return len(v.Errors) > 0
}

// BucketTotal is one category's aggregate amount across the active rows.
type BucketTotal struct {
	Field  Field   `json:"field"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"` // Amount / gross, 0 when gross is 0
}

// StepKind classifies a waterfall bar.
type StepKind string

// Waterfall bar kinds.
const (
	StepStart     StepKind = "start"
	StepDecrement StepKind = "decrement"
	StepSubtotal  StepKind = "subtotal"
)

// WaterfallStep is one bar of the gross-to-net bridge. Decrements carry negative amounts.
type WaterfallStep struct {
	Label  string   `json:"label"`
	Kind   StepKind `json:"kind"`
	Field  Field    `json:"field"`
	Amount float64  `json:"amount"`
}

// Dataset is a persisted upload: the normalizer's rows and warnings plus import metadata.
type Dataset struct {
	ImportedAt     time.Time      `json:"importedAt"`
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Source         string         `json:"source"`
	Rows           []CanonicalRow `json:"rows,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
	RowCount       int            `json:"rowCount"`
	WarningCount   int            `json:"warningCount"`
	CorrectedCount int            `json:"correctedCount"`
}
