package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance"

// Render writes the table into a workbook: title, generation stamp, bold
// header row with autofilter, then the data rows.
func Render(t Table) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellStr(sheetName, "A1", t.Title); err != nil {
		return nil, fmt.Errorf("set title: %w", err)
	}
	if err := f.SetCellStr(sheetName, "A2", "Generated "+t.GeneratedAt); err != nil {
		return nil, fmt.Errorf("set stamp: %w", err)
	}

	const headerRow = 4
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	endCol, _ := excelize.ColumnNumberToName(len(t.Headers))
	_ = f.SetCellStyle(sheetName, "A1", "A1", bold)
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", endCol, headerRow), bold)
	_ = f.AutoFilter(sheetName, fmt.Sprintf("A%d:%s%d", headerRow, endCol, headerRow), nil)

	for r, row := range t.Rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, headerRow+1+r)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStr(sheetName, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// Width heuristic from header and first rows.
	for c := 1; c <= len(t.Headers); c++ {
		widest := len(t.Headers[c-1])
		for r := 0; r < len(t.Rows) && r < 50; r++ {
			if l := len(t.Rows[r][c-1]); l > widest {
				widest = l
			}
		}
		w := float64(widest) * 0.9
		if w < 10 {
			w = 10
		}
		if w > 40 {
			w = 40
		}
		col, _ := excelize.ColumnNumberToName(c)
		_ = f.SetColWidth(sheetName, col, col, w)
	}
	return f, nil
}
