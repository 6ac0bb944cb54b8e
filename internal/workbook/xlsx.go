package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/dutyroster/internal/models"
)

func decodeXLSX(content []byte) (*models.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	wb := &models.Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", name, err)
		}
		sheet := &models.Sheet{Name: name, Rows: make([][]models.Value, len(rows))}
		for i, row := range rows {
			values := make([]models.Value, len(row))
			for j, cell := range row {
				values[j] = parseValue(cell)
			}
			sheet.Rows[i] = trimRow(values)
		}
		sheet.Rows = trimRows(sheet.Rows)
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}
