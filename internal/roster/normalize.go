// Package roster infers the layout of loosely structured duty-roster sheets and
// turns one calendar day of assignments into categorized buckets.
package roster

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/hyperjump/dutyroster/internal/models"
)

// NormalizeText collapses every whitespace run to a single space, trims the result,
// and maps Arabic-Indic and Extended Arabic-Indic digits to ASCII.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r >= '\u0660' && r <= '\u0669':
			r = '0' + (r - '\u0660')
		case r >= '\u06f0' && r <= '\u06f9':
			r = '0' + (r - '\u06f0')
		case r == '\u200b' || r == '\ufeff':
			continue
		}
		if unicode.IsSpace(r) || r == '\u00a0' || r == '\u202f' || r == '\u2007' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize renders a cell value as normalized text. Numbers are printed without a
// trailing fraction when integral, so 15.0 becomes "15".
func Normalize(v models.Value) string {
	switch v.Kind {
	case models.KindNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return ""
		}
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case models.KindText:
		return NormalizeText(v.Text)
	default:
		return ""
	}
}

// ParseDay reads a day-of-month from a cell. It accepts integral numbers and numeric
// text in either digit script and reports false for anything outside 1..31.
func ParseDay(v models.Value) (int, bool) {
	var f float64
	switch v.Kind {
	case models.KindNumber:
		f = v.Number
	case models.KindText:
		s := NormalizeText(v.Text)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || f != math.Trunc(f) || f < 1 || f > 31 {
		return 0, false
	}
	return int(f), true
}

// upper is the comparison form used by the classifiers and the mapper.
func upper(s string) string {
	return strings.ToUpper(NormalizeText(s))
}
