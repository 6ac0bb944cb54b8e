// Package models defines core data structures for workbooks, rosters, and snapshots.
package models

import (
	"strconv"
	"strings"
)

// ValueKind is the native type of a cell value.
type ValueKind int

const (
	// KindEmpty is a blank cell.
	KindEmpty ValueKind = iota
	// KindText is a text cell.
	KindText
	// KindNumber is a numeric cell.
	KindNumber
)

// Value is the raw value of a single cell: text, a number, or empty.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
}

// EmptyValue returns the empty cell value.
func EmptyValue() Value { return Value{} }

// TextValue returns a text cell value. Blank strings are still text; normalization decides emptiness.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue returns a numeric cell value.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// IsEmpty reports whether the value is empty or whitespace-only text.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(v.Text) == ""
	default:
		return false
	}
}

// String returns the raw string form of the value without normalization.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// Sheet is a rectangular grid of cells. Rows may be ragged; missing cells read as empty.
type Sheet struct {
	Name string
	Rows [][]Value
}

// Cell returns the value at the 1-based (row, col). Out-of-range positions are empty.
func (s *Sheet) Cell(row, col int) Value {
	if s == nil || row < 1 || col < 1 || row > len(s.Rows) {
		return Value{}
	}
	r := s.Rows[row-1]
	if col > len(r) {
		return Value{}
	}
	return r[col-1]
}

// MaxRow returns the number of rows in the sheet.
func (s *Sheet) MaxRow() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// MaxCol returns the width of the widest row.
func (s *Sheet) MaxCol() int {
	if s == nil {
		return 0
	}
	width := 0
	for _, r := range s.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}

// Workbook is a named collection of sheets in file order.
type Workbook struct {
	Name   string
	Sheets []*Sheet
}

// Sheet returns the sheet whose name matches ignoring case and surrounding/inner whitespace runs.
func (w *Workbook) Sheet(name string) *Sheet {
	if w == nil {
		return nil
	}
	want := SheetKey(name)
	for _, s := range w.Sheets {
		if SheetKey(s.Name) == want {
			return s
		}
	}
	return nil
}

// SheetNames returns the sheet names in file order.
func (w *Workbook) SheetNames() []string {
	if w == nil {
		return nil
	}
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// SheetKey is the comparison key for sheet names.
func SheetKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Anchor is the resolved set of row/column positions for one sheet and one target date.
// All positions are 1-based; zero means unresolved.
type Anchor struct {
	DayHeaderRow      int `json:"day_header_row"`
	DateRow           int `json:"date_row"`
	TodayColumn       int `json:"today_column"`
	EmployeeHeaderRow int `json:"employee_header_row"`
	EmployeeColumn    int `json:"employee_column"`
}

// Usable reports whether the anchor can drive extraction.
func (a Anchor) Usable() bool {
	return a.TodayColumn > 0 && a.EmployeeColumn > 0
}
