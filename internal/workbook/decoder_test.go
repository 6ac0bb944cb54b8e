package workbook

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/dutyroster/internal/models"
)

func rosterXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Officers"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("Officers", "B2", "EMPLOYEE NAME")
	f.SetCellValue("Officers", "B3", "SUN")
	f.SetCellValue("Officers", "C3", "MON")
	f.SetCellValue("Officers", "B4", 1)
	f.SetCellValue("Officers", "C4", 2)
	f.SetCellValue("Officers", "B5", "Ahmed Ali - 1023")
	f.SetCellValue("Officers", "C5", "0600")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.Bytes()
}

// minimalOds returns .ods zip bytes with the given content.xml.
func minimalOds(contentXML string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	mt, _ := w.Create("mimetype")
	_, _ = mt.Write([]byte("application/vnd.oasis.opendocument.spreadsheet"))
	fw, _ := w.Create(odsContentPath)
	_, _ = fw.Write([]byte(contentXML))
	_ = w.Close()
	return buf.Bytes()
}

func TestDecode_xlsx(t *testing.T) {
	d := NewDecoder(WithLogger(zap.NewNop()))
	wb, err := d.Decode(rosterXLSX(t), ".xlsx")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s := wb.Sheet("officers")
	if s == nil {
		t.Fatalf("sheet Officers missing, have %v", wb.SheetNames())
	}
	if got := s.Cell(2, 2); got.Kind != models.KindText || got.Text != "EMPLOYEE NAME" {
		t.Errorf("B2 = %+v", got)
	}
	if got := s.Cell(4, 3); got.Kind != models.KindNumber || got.Number != 2 {
		t.Errorf("C4 = %+v", got)
	}
	if got := s.Cell(5, 3); got.Kind != models.KindText || got.Text != "0600" {
		t.Errorf("C5 = %+v", got)
	}
	if got := s.Cell(1, 1); !got.IsEmpty() {
		t.Errorf("A1 = %+v, want empty", got)
	}
}

func TestDecode_ods(t *testing.T) {
	contentXML := `<office:document-content><office:body><office:spreadsheet>` +
		`<table:table table:name="Officers">` +
		`<table:table-row><table:table-cell table:number-columns-repeated="2"/><table:table-cell><text:p>EMPLOYEE NAME</text:p></table:table-cell><table:table-cell table:number-columns-repeated="1020"/></table:table-row>` +
		`<table:table-row table:number-rows-repeated="2"><table:table-cell/></table:table-row>` +
		`<table:table-row><table:table-cell office:value-type="float" office:value="15"><text:p>15.00</text:p></table:table-cell><table:table-cell table:number-columns-repeated="2"><text:p>MN06</text:p></table:table-cell><table:table-cell><text:p>Ahmed</text:p><text:p>Ali</text:p><office:annotation><text:p>note</text:p></office:annotation></table:table-cell></table:table-row>` +
		`<table:table-row table:number-rows-repeated="1048000"><table:table-cell table:number-columns-repeated="1024"/></table:table-row>` +
		`</table:table>` +
		`<table:table table:name="Notes"><table:table-row><table:table-cell><text:p>x</text:p></table:table-cell></table:table-row></table:table>` +
		`</office:spreadsheet></office:body></office:document-content>`

	wb, err := NewDecoder().Decode(minimalOds(contentXML), ".ods")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if names := wb.SheetNames(); len(names) != 2 || names[0] != "Officers" || names[1] != "Notes" {
		t.Fatalf("sheets = %v", names)
	}
	s := wb.Sheets[0]
	if s.MaxRow() != 4 {
		t.Errorf("MaxRow = %d, want 4", s.MaxRow())
	}
	if got := s.Cell(1, 3); got.Text != "EMPLOYEE NAME" {
		t.Errorf("C1 = %+v", got)
	}
	if len(s.Rows[0]) != 3 {
		t.Errorf("row 1 width = %d, want 3", len(s.Rows[0]))
	}
	if got := s.Cell(4, 1); got.Kind != models.KindNumber || got.Number != 15 {
		t.Errorf("A4 = %+v", got)
	}
	if s.Cell(4, 2).Text != "MN06" || s.Cell(4, 3).Text != "MN06" {
		t.Errorf("repeated cells = %+v %+v", s.Cell(4, 2), s.Cell(4, 3))
	}
	if got := s.Cell(4, 4).Text; got != "Ahmed Ali" {
		t.Errorf("D4 = %q, want %q", got, "Ahmed Ali")
	}
}

func TestDecode_odsContentNotFound(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("other.xml")
	_ = w.Close()
	if _, err := NewDecoder().Decode(buf.Bytes(), ".ods"); err == nil {
		t.Error("expected error when content.xml missing")
	}
}

func TestDecode_errors(t *testing.T) {
	d := NewDecoder()
	if _, err := d.Decode(nil, ".xlsx"); !errors.Is(err, ErrEmptyWorkbook) {
		t.Errorf("empty content: got %v", err)
	}
	if _, err := d.Decode([]byte("hello"), ".csv"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("csv: got %v", err)
	}
	if _, err := d.Decode([]byte("<!DOCTYPE html>"), ""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("html: got %v", err)
	}
	if _, err := d.Decode([]byte("PK not really"), ".xlsx"); err == nil {
		t.Error("expected error for corrupt xlsx")
	}
	empty := minimalOds(`<office:document-content><office:body><office:spreadsheet/></office:body></office:document-content>`)
	if _, err := d.Decode(empty, ".ods"); !errors.Is(err, ErrEmptyWorkbook) {
		t.Errorf("sheetless ods: got %v", err)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"xlsx", rosterXLSX(t), ".xlsx"},
		{"ods", minimalOds(`<x/>`), ".ods"},
		{"xls", append(append([]byte{}, oleMagic...), 0, 0, 0), ".xls"},
		{"html", []byte("<!DOCTYPE html><html></html>"), ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.content); got != tt.want {
				t.Errorf("Sniff = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpen_detectsFormatWithoutExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download")
	if err := os.WriteFile(path, rosterXLSX(t), 0600); err != nil {
		t.Fatal(err)
	}
	wb, err := NewDecoder().Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if wb.Name != "download" || wb.Sheet("Officers") == nil {
		t.Errorf("unexpected workbook %q %v", wb.Name, wb.SheetNames())
	}
}

func TestOpen_nonexistent(t *testing.T) {
	if _, err := NewDecoder().Open("/nonexistent/roster.xlsx"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want models.Value
	}{
		{"", models.EmptyValue()},
		{"   ", models.EmptyValue()},
		{"15", models.NumberValue(15)},
		{"15.0", models.NumberValue(15)},
		{"0", models.NumberValue(0)},
		{"0.5", models.NumberValue(0.5)},
		{"0600", models.TextValue("0600")},
		{"MN06", models.TextValue("MN06")},
		{"NaN", models.TextValue("NaN")},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
