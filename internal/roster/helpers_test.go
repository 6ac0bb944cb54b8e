package roster

import (
	"fmt"
	"time"

	"github.com/hyperjump/dutyroster/internal/models"
)

// grid builds a sheet from literal rows. Strings become text cells, ints and
// floats become numbers, and nil is an empty cell.
func grid(name string, rows ...[]any) *models.Sheet {
	s := &models.Sheet{Name: name}
	for _, row := range rows {
		values := make([]models.Value, len(row))
		for i, cell := range row {
			switch v := cell.(type) {
			case nil:
				values[i] = models.EmptyValue()
			case string:
				values[i] = models.TextValue(v)
			case int:
				values[i] = models.NumberValue(float64(v))
			case float64:
				values[i] = models.NumberValue(v)
			default:
				panic(fmt.Sprintf("unsupported cell %T", cell))
			}
		}
		s.Rows = append(s.Rows, values)
	}
	return s
}

var shortDays = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// monthHeader returns a weekday row and a date row for days 1..n of the month
// starting at first, with day 1 at column startCol.
func monthHeader(first time.Time, n, startCol int) (dayRow, dateRow []any) {
	dayRow = make([]any, startCol-1+n)
	dateRow = make([]any, startCol-1+n)
	for d := 1; d <= n; d++ {
		day := first.AddDate(0, 0, d-1)
		dayRow[startCol-2+d] = shortDays[day.Weekday()]
		dateRow[startCol-2+d] = d
	}
	return dayRow, dateRow
}

// officers is a small department sheet: title, employee header at row 2, weekday
// header at row 3, dates 1..28 at row 4 from column 2, then employee rows.
func officers(employees ...[]any) *models.Sheet {
	days, dates := monthHeader(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), 28, 2)
	rows := [][]any{
		{"Officers Duty Roster February 2026"},
		{nil, "EMPLOYEE NAME"},
		days,
		dates,
	}
	rows = append(rows, employees...)
	return grid("Officers", rows...)
}
