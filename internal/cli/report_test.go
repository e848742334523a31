package cli

import (
	"testing"
	"time"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() Report {
	base, res := scenarioFixture()
	return Report{
		Title:       "Q1 Waterfall",
		Dataset:     "march_upload",
		GeneratedAt: time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC),
		Filter:      aggregate.Filter{Customers: []string{"Noord"}},
		Summary:     base,
		Scenario:    &res,
		Format:      DefaultNumberFormat(),
	}
}

func TestRenderMarkdownReport(t *testing.T) {
	md := RenderMarkdownReport(testReport())

	assert.Contains(t, md, "# Q1 Waterfall")
	assert.Contains(t, md, `- Dataset: march\_upload`)
	assert.Contains(t, md, "- Filter: customer: Noord")
	assert.Contains(t, md, "| **Gross Sales** | €2,000 | 100.0% |")
	assert.Contains(t, md, "| Channel Discount | -€200 | -10.0% |")
	assert.NotContains(t, md, "| Volume Discount | €0 | 0.0% |", "empty decrements are left out")
	assert.Contains(t, md, "| **Net Sales** | €1,750 |")
	assert.Contains(t, md, "## Scenario")
	assert.Contains(t, md, "an uplift of €20")
	assert.NotContains(t, md, "## By period")
}

func TestRenderHTMLReport(t *testing.T) {
	html, err := RenderHTMLReport(testReport())
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Q1 Waterfall</title>")
	assert.Contains(t, html, "<h1>Q1 Waterfall</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>Channel Discount</td>")
}
