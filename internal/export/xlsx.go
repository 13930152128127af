package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Contracts"

// column widths by header; anything else gets defaultWidth
var columnWidths = map[string]float64{
	"Filename":        32,
	"Name":            24,
	"Date":            18,
	"Work":            48,
	"Initial Payment": 16,
	"Second Payment":  16,
}

const defaultWidth = 20

// WriteXLSX writes the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)

	for i, h := range t.Columns {
		ref, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, ref, h)

		col, _ := excelize.ColumnNumberToName(i + 1)
		width, ok := columnWidths[h]
		if !ok {
			width = defaultWidth
		}
		_ = f.SetColWidth(sheetName, col, col, width)
	}

	for r, row := range t.strings() {
		for c, v := range row {
			if v == "" {
				continue
			}
			ref, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheetName, ref, v); err != nil {
				return fmt.Errorf("xlsx cell %s: %w", ref, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
