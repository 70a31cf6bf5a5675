package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/revenuepro/internal/report"
)

const sheetName = "Weekly"

// ToXLSX writes the rows to a single-sheet workbook with numeric cells.
func ToXLSX(rows []report.WeekRow, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := Header()
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for r, row := range rows {
		line := r + 2
		cells := []any{row.Week.WeekID, row.Week.WeekLabel, row.Week.MonthLabel}
		for _, v := range values(row) {
			cells = append(cells, v)
		}
		start, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheetName, start, &cells); err != nil {
			return fmt.Errorf("write row %s: %w", row.Week.WeekID, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx file: %w", err)
	}
	return nil
}
