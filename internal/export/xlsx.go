package export

import (
	"fmt"

	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Schedule"

// XLSX writes the schedule to a single-sheet workbook.
func XLSX(rendered scheduledomain.Rendered) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheetName, cell, value)
	}

	set("A1", "Lease")
	set("B1", rendered.LeaseID)
	set("A2", "Total")
	set("B2", rendered.Total.StringFixed(2))

	headerRow := 4
	for i, header := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		set(cell, header)
	}
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = file.SetCellStyle(sheetName, "A4", "G4", style)
	}

	if rendered.Empty {
		set(fmt.Sprintf("A%d", headerRow+1), rendered.EmptyMessage)
	}
	for i, row := range rendered.Rows {
		for j, value := range cells(row) {
			cell, _ := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			set(cell, value)
		}
	}

	_ = file.SetColWidth(sheetName, "A", "A", 6)
	_ = file.SetColWidth(sheetName, "B", "C", 14)
	_ = file.SetColWidth(sheetName, "D", "E", 16)
	_ = file.SetColWidth(sheetName, "F", "F", 34)
	_ = file.SetColWidth(sheetName, "G", "G", 12)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
