package tabular

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/xuri/excelize/v2"
)

// decodeXLSX reads one worksheet. Numeric cells come through as float64 raw values so
// date serials and amounts are not re-parsed from their display format; text cells
// stay strings.
func decodeXLSX(r io.Reader, opts Options) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return Table{}, fmt.Errorf("%w: sheet %q not found", common.ErrNotFound, sheet)
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	rows := make([][]any, len(raw))
	for i, line := range raw {
		cells := make([]any, len(line))
		for j, v := range line {
			cells[j] = cellValue(f, sheet, j+1, i+1, v)
		}
		rows[i] = cells
	}
	return buildTable(rows), nil
}

func cellValue(f *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return raw
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return raw
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		return raw
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}
