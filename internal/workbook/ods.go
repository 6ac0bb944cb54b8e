package workbook

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/dutyroster/internal/models"
)

// odsContentPath is the path to the main content inside an .ods zip (OpenDocument Spreadsheet).
const odsContentPath = "content.xml"

// Repeat caps for the compressed row/column runs OpenDocument writers emit to fill a sheet.
const (
	odsMaxColumns = 1024
	odsMaxRows    = 65536
)

func decodeODS(content []byte) (*models.Workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open ODS: not a zip: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != odsContentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open ODS: open %s: %w", f.Name, err)
		}
		defer rc.Close()
		return parseODSContent(rc)
	}
	return nil, fmt.Errorf("open ODS: %s not found", odsContentPath)
}

// odsSheetBuilder accumulates one table. Empty runs are held back until a
// non-empty cell or row follows them, so trailing filler never materializes.
type odsSheetBuilder struct {
	sheet       *models.Sheet
	row         []models.Value
	pendingCols int
	pendingRows int
	rowRepeat   int
}

func (b *odsSheetBuilder) addCell(v models.Value, repeat int) {
	if v.IsEmpty() {
		b.pendingCols += repeat
		return
	}
	for i := 0; i < b.pendingCols && len(b.row) < odsMaxColumns; i++ {
		b.row = append(b.row, models.EmptyValue())
	}
	b.pendingCols = 0
	for i := 0; i < repeat && len(b.row) < odsMaxColumns; i++ {
		b.row = append(b.row, v)
	}
}

func (b *odsSheetBuilder) endRow() {
	if len(b.row) == 0 {
		b.pendingRows += b.rowRepeat
	} else {
		for i := 0; i < b.pendingRows && len(b.sheet.Rows) < odsMaxRows; i++ {
			b.sheet.Rows = append(b.sheet.Rows, nil)
		}
		b.pendingRows = 0
		for i := 0; i < b.rowRepeat && len(b.sheet.Rows) < odsMaxRows; i++ {
			b.sheet.Rows = append(b.sheet.Rows, append([]models.Value(nil), b.row...))
		}
	}
	b.row = nil
	b.pendingCols = 0
}

func parseODSContent(r io.Reader) (*models.Workbook, error) {
	dec := xml.NewDecoder(r)
	wb := &models.Workbook{}

	var (
		cur      *odsSheetBuilder
		inCell   bool
		cellVal  models.Value
		cellText strings.Builder
		cellRep  int
		paras    int
		inNote   bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("open ODS: parse %s: %w", odsContentPath, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "table":
				cur = &odsSheetBuilder{sheet: &models.Sheet{Name: attr(t, "name")}}
			case "table-row":
				if cur != nil {
					cur.rowRepeat = repeatAttr(t, "number-rows-repeated")
				}
			case "table-cell", "covered-table-cell":
				inCell = true
				cellText.Reset()
				paras = 0
				cellRep = repeatAttr(t, "number-columns-repeated")
				cellVal = models.EmptyValue()
				switch attr(t, "value-type") {
				case "float", "percentage", "currency":
					if f, err := strconv.ParseFloat(attr(t, "value"), 64); err == nil {
						cellVal = models.NumberValue(f)
					}
				}
			case "annotation":
				inNote = true
			case "p":
				if inCell && !inNote {
					if paras > 0 {
						cellText.WriteByte(' ')
					}
					paras++
				}
			case "s":
				if inCell && !inNote {
					n := repeatAttr(t, "c")
					cellText.WriteString(strings.Repeat(" ", n))
				}
			}
		case xml.CharData:
			if inCell && !inNote {
				cellText.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "annotation":
				inNote = false
			case "table-cell", "covered-table-cell":
				if cur != nil {
					v := cellVal
					if v.Kind == models.KindEmpty {
						v = parseValue(cellText.String())
					}
					cur.addCell(v, cellRep)
				}
				inCell = false
			case "table-row":
				if cur != nil {
					cur.endRow()
				}
			case "table":
				if cur != nil {
					wb.Sheets = append(wb.Sheets, cur.sheet)
					cur = nil
				}
			}
		}
	}
	return wb, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func repeatAttr(el xml.StartElement, local string) int {
	n, err := strconv.Atoi(attr(el, local))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
