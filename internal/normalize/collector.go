package normalize

import (
	"fmt"

	"github.com/Veraticus/gross-to-net/internal/model"
)

// collector accumulates diagnostics across one normalization pass.
type collector struct {
	warnings  []string
	errors    []string
	corrected int
}

func newCollector() *collector {
	return &collector{
		warnings: []string{},
		errors:   []string{},
	}
}

func (c *collector) warn(line int, format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf("Row %d: %s", line, fmt.Sprintf(format, args...)))
}

// note records a warning that belongs to the upload rather than to one row.
func (c *collector) note(msg string) {
	c.warnings = append(c.warnings, msg)
}

func (c *collector) fatal(msg string) {
	c.errors = append(c.errors, msg)
}

func (c *collector) failed() bool {
	return len(c.errors) > 0
}

// result builds the final ValidationResult. A failed pass never carries rows or
// corrections.
func (c *collector) result(rows []model.CanonicalRow) model.ValidationResult {
	if c.failed() || rows == nil {
		rows = []model.CanonicalRow{}
	}
	corrected := c.corrected
	if c.failed() {
		corrected = 0
	}
	return model.ValidationResult{
		Rows:           rows,
		Warnings:       c.warnings,
		Errors:         c.errors,
		CorrectedCount: corrected,
	}
}
