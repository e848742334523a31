// Package tabular decodes CSV and XLSX uploads into header-keyed records.
package tabular

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/model"
)

// Format identifies a spreadsheet container.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Options tune decoding. The zero value sniffs the CSV delimiter, assumes UTF-8 and
// reads the first worksheet.
type Options struct {
	Encoding  string
	Sheet     string
	Delimiter rune
}

// Table is a decoded sheet.
type Table struct {
	Headers []string
	Records []model.Record
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Base(path))
	}
}

// DecodeFile opens path and decodes it according to its extension.
func DecodeFile(path string, opts Options) (Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Table{}, err
	}
	if opts.Delimiter == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
		opts.Delimiter = '\t'
	}

	f, err := os.Open(path) // #nosec G304 -- user-selected upload
	if err != nil {
		return Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := Decode(f, format, opts)
	if err != nil {
		return Table{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// Decode reads a sheet from r.
func Decode(r io.Reader, format Format, opts Options) (Table, error) {
	switch format {
	case FormatCSV:
		return decodeCSV(r, opts)
	case FormatXLSX:
		return decodeXLSX(r, opts)
	default:
		return Table{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
	}
}

// buildTable turns a cell grid into records. The first non-blank row is the header;
// blank rows are skipped and short rows are padded with empty strings.
func buildTable(rows [][]any) Table {
	table := Table{Records: []model.Record{}}

	start := -1
	for i, row := range rows {
		if !blank(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return table
	}

	table.Headers = headerNames(rows[start])
	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		rec := make(model.Record, len(table.Headers))
		for i, h := range table.Headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		table.Records = append(table.Records, rec)
	}
	return table
}

// headerNames trims header cells, names empty ones by position and suffixes
// duplicates with _2, _3 and so on.
func headerNames(row []any) []string {
	seen := make(map[string]int, len(row))
	out := make([]string, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(fmt.Sprint(cell))
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		out[i] = name
	}
	return out
}

func blank(row []any) bool {
	for _, cell := range row {
		if s, ok := cell.(string); ok {
			if strings.TrimSpace(s) != "" {
				return false
			}
			continue
		}
		if cell != nil {
			return false
		}
	}
	return true
}
