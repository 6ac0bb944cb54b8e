package workbook

import (
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/dutyroster/internal/models"
)

// parseValue turns a cell's string form into a value. Numeric strings become
// numbers unless a leading zero marks them as codes or clock times.
func parseValue(s string) models.Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return models.EmptyValue()
	}
	if len(t) > 1 && t[0] == '0' && t[1] != '.' {
		return models.TextValue(s)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return models.NumberValue(f)
	}
	return models.TextValue(s)
}

// trimRow drops trailing empty cells.
func trimRow(row []models.Value) []models.Value {
	n := len(row)
	for n > 0 && row[n-1].IsEmpty() {
		n--
	}
	return row[:n]
}

// trimRows drops trailing empty rows.
func trimRows(rows [][]models.Value) [][]models.Value {
	n := len(rows)
	for n > 0 && len(rows[n-1]) == 0 {
		n--
	}
	return rows[:n]
}
