package roster

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/dutyroster/internal/models"
)

// ErrMissingLayoutAnchor is returned when a sheet's layout cannot be resolved.
var ErrMissingLayoutAnchor = errors.New("missing layout anchor")

// AnchorError names the anchor that could not be resolved on a sheet.
type AnchorError struct {
	Sheet  string
	Anchor string
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("sheet %q: %s: %v", e.Sheet, e.Anchor, ErrMissingLayoutAnchor)
}

func (e *AnchorError) Unwrap() error { return ErrMissingLayoutAnchor }

// Limits bound every scan the locator performs.
type Limits struct {
	HeaderScanRows   int
	EmployeeScanRows int
	MinWeekdayHits   int
	MinDayNumbers    int
}

// DefaultLimits returns the standard scan bounds.
func DefaultLimits() Limits {
	return Limits{
		HeaderScanRows:   60,
		EmployeeScanRows: 40,
		MinWeekdayHits:   3,
		MinDayNumbers:    3,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.HeaderScanRows <= 0 {
		l.HeaderScanRows = d.HeaderScanRows
	}
	if l.EmployeeScanRows <= 0 {
		l.EmployeeScanRows = d.EmployeeScanRows
	}
	if l.MinWeekdayHits <= 0 {
		l.MinWeekdayHits = d.MinWeekdayHits
	}
	if l.MinDayNumbers <= 0 {
		l.MinDayNumbers = d.MinDayNumbers
	}
	return l
}

// Match is the rung of the today-column ladder that produced a column.
type Match int

const (
	// MatchNone means no column was found.
	MatchNone Match = iota
	// MatchConfirmed means the date row and the weekday header agree.
	MatchConfirmed
	// MatchDateOnly means only the day-of-month matched.
	MatchDateOnly
	// MatchWeekdayOnly means only the weekday header matched.
	MatchWeekdayOnly
)

func (m Match) String() string {
	switch m {
	case MatchConfirmed:
		return "confirmed"
	case MatchDateOnly:
		return "date-only"
	case MatchWeekdayOnly:
		return "weekday-only"
	default:
		return "none"
	}
}

// Locator finds the structural anchors of a roster sheet.
type Locator struct {
	limits   Limits
	weekdays map[string]time.Weekday
}

// NewLocator creates a locator. Zero limits fall back to DefaultLimits and a nil
// vocabulary falls back to DefaultWeekdays.
func NewLocator(limits Limits, weekdays Weekdays) *Locator {
	if weekdays == nil {
		weekdays = DefaultWeekdays()
	}
	return &Locator{limits: limits.withDefaults(), weekdays: weekdays.index()}
}

// LocateDayHeaderRow returns the row most likely to hold the weekday header.
// Each candidate row needs MinWeekdayHits distinct weekdays and is scored by
// hits*10 plus the number of day integers in the row below. Ties keep the earliest row.
func (l *Locator) LocateDayHeaderRow(sheet *models.Sheet) (int, bool) {
	best, bestScore := 0, -1
	last := min(sheet.MaxRow(), l.limits.HeaderScanRows)
	for r := 1; r <= last; r++ {
		hits := len(l.rowWeekdays(sheet, r))
		if hits < l.limits.MinWeekdayHits {
			continue
		}
		score := hits*10 + countDays(sheet, r+1)
		if score > bestScore {
			best, bestScore = r, score
		}
	}
	return best, best > 0
}

// LocateDateRow validates the row directly below the weekday header as a row of day numbers.
func (l *Locator) LocateDateRow(sheet *models.Sheet, dayRow int) (int, bool) {
	if dayRow < 1 {
		return 0, false
	}
	row := dayRow + 1
	if countDays(sheet, row) < l.limits.MinDayNumbers {
		return 0, false
	}
	return row, true
}

// LocateTodayColumn picks the column for the target day. A column whose date cell
// and weekday header both agree wins; then the first date match; then the first
// weekday header match. A zero dateRow goes straight to the weekday rung.
func (l *Locator) LocateTodayColumn(sheet *models.Sheet, dayRow, dateRow, dom int, weekday time.Weekday) (int, Match) {
	maxCol := sheet.MaxCol()
	var dated []int
	if dateRow > 0 {
		for c := 1; c <= maxCol; c++ {
			if d, ok := ParseDay(sheet.Cell(dateRow, c)); ok && d == dom {
				dated = append(dated, c)
			}
		}
	}
	if dayRow > 0 {
		for _, c := range dated {
			if l.cellHasWeekday(sheet.Cell(dayRow, c), weekday) {
				return c, MatchConfirmed
			}
		}
	}
	if len(dated) > 0 {
		return dated[0], MatchDateOnly
	}
	if dayRow > 0 {
		for c := 1; c <= maxCol; c++ {
			if l.cellHasWeekday(sheet.Cell(dayRow, c), weekday) {
				return c, MatchWeekdayOnly
			}
		}
	}
	return 0, MatchNone
}

// LocateEmployeeHeaderRow returns the first row carrying an employee header keyword.
func (l *Locator) LocateEmployeeHeaderRow(sheet *models.Sheet) (int, bool) {
	last := min(sheet.MaxRow(), l.limits.HeaderScanRows)
	maxCol := sheet.MaxCol()
	for r := 1; r <= last; r++ {
		for c := 1; c <= maxCol; c++ {
			text := upper(Normalize(sheet.Cell(r, c)))
			if text != "" && containsAnyPhrase(text, headerKeywords) {
				return r, true
			}
		}
	}
	return 0, false
}

// LocateEmployeeColumn scores each column by the number of name-like cells in the
// window rows after startRow. The highest score wins and ties keep the lowest column.
func (l *Locator) LocateEmployeeColumn(sheet *models.Sheet, startRow, window int) (int, bool) {
	if window <= 0 {
		window = l.limits.EmployeeScanRows
	}
	last := min(sheet.MaxRow(), startRow+window)
	maxCol := sheet.MaxCol()
	best, bestScore := 0, 0
	for c := 1; c <= maxCol; c++ {
		score := 0
		for r := startRow + 1; r <= last; r++ {
			if l.IsEmployeeName(Normalize(sheet.Cell(r, c))) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, best > 0
}

// Locate resolves every anchor of a sheet for the given date.
func (l *Locator) Locate(sheet *models.Sheet, date time.Time) (models.Anchor, error) {
	var a models.Anchor
	name := ""
	if sheet != nil {
		name = sheet.Name
	}

	dayRow, ok := l.LocateDayHeaderRow(sheet)
	if !ok {
		return a, &AnchorError{Sheet: name, Anchor: "day header row"}
	}
	a.DayHeaderRow = dayRow
	if dateRow, ok := l.LocateDateRow(sheet, dayRow); ok {
		a.DateRow = dateRow
	}

	col, _ := l.LocateTodayColumn(sheet, a.DayHeaderRow, a.DateRow, date.Day(), date.Weekday())
	if col == 0 {
		return a, &AnchorError{Sheet: name, Anchor: "today column"}
	}
	a.TodayColumn = col

	headerRow, ok := l.LocateEmployeeHeaderRow(sheet)
	if !ok {
		return a, &AnchorError{Sheet: name, Anchor: "employee header row"}
	}
	a.EmployeeHeaderRow = headerRow

	empCol, ok := l.LocateEmployeeColumn(sheet, headerRow, l.limits.EmployeeScanRows)
	if !ok {
		return a, &AnchorError{Sheet: name, Anchor: "employee column"}
	}
	a.EmployeeColumn = empCol
	return a, nil
}

// IsEmployeeName is IsEmployeeNameLike using the locator's weekday vocabulary,
// so custom day tokens are not mistaken for names.
func (l *Locator) IsEmployeeName(s string) bool {
	return isEmployeeNameLike(s, l.weekdays)
}

// rowWeekdays returns the distinct weekdays named anywhere in the row.
func (l *Locator) rowWeekdays(sheet *models.Sheet, row int) map[time.Weekday]bool {
	found := make(map[time.Weekday]bool)
	maxCol := sheet.MaxCol()
	for c := 1; c <= maxCol; c++ {
		for _, w := range words(upper(Normalize(sheet.Cell(row, c)))) {
			if day, ok := l.weekdays[w]; ok {
				found[day] = true
			}
		}
	}
	return found
}

func (l *Locator) cellHasWeekday(v models.Value, weekday time.Weekday) bool {
	for _, w := range words(upper(Normalize(v))) {
		if day, ok := l.weekdays[w]; ok && day == weekday {
			return true
		}
	}
	return false
}

// countDays counts cells in the row holding a day-of-month integer.
func countDays(sheet *models.Sheet, row int) int {
	if row < 1 || row > sheet.MaxRow() {
		return 0
	}
	n := 0
	for _, v := range sheet.Rows[row-1] {
		if _, ok := ParseDay(v); ok {
			n++
		}
	}
	return n
}
