package workbook

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"github.com/hyperjump/dutyroster/internal/models"
)

// maxXLSRows bounds legacy sheets, which address at most 65536 rows.
const maxXLSRows = 65536

func decodeXLS(content []byte) (*models.Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	wb := &models.Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		sheet := &models.Sheet{Name: ws.Name}
		last := int(ws.MaxRow)
		if last >= maxXLSRows {
			last = maxXLSRows - 1
		}
		for r := 0; r <= last; r++ {
			row := ws.Row(r)
			if row == nil {
				sheet.Rows = append(sheet.Rows, nil)
				continue
			}
			width := max(row.LastCol(), 0)
			values := make([]models.Value, width)
			for c := max(row.FirstCol(), 0); c < width; c++ {
				values[c] = parseValue(row.Col(c))
			}
			sheet.Rows = append(sheet.Rows, trimRow(values))
		}
		sheet.Rows = trimRows(sheet.Rows)
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}
