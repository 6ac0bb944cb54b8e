// Package period derives roster months from file and sheet names and the
// current calendar day in the roster's time zone.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

const monthAlt = `(january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec)`

var (
	separatorRe   = regexp.MustCompile(`[._\-]+`)
	yearSuffixRe  = regexp.MustCompile(`(\d{4})[a-z]+`)
	monthYearRe   = regexp.MustCompile(`\b` + monthAlt + `\s*(\d{4})\b`)
	yearMonthRe   = regexp.MustCompile(`\b(\d{4})\s*` + monthAlt + `\b`)
	monthOnlyRe   = regexp.MustCompile(`\b` + monthAlt + `\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{4})\s+(\d{1,2})\b`)
)

// Key formats a year and month as "YYYY-MM".
func Key(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParseKey parses a "YYYY-MM" key.
func ParseKey(key string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t.Year(), t.Month(), nil
}

// MonthKeyFromFilename extracts a "YYYY-MM" key from a file name such as
// IMP_FEB_2026.xlsx, 2026_MARCH.xlsx or MARCH ROSTER.xlsx. Without a year the
// month is placed in today's year, or the next year when it lies more than
// three months behind today.
func MonthKeyFromFilename(name string, today time.Time) (string, bool) {
	n := clean(name)
	if n == "" {
		return "", false
	}
	if m := monthYearRe.FindStringSubmatch(n); m != nil {
		year, _ := strconv.Atoi(m[2])
		return Key(year, monthNames[m[1]]), true
	}
	if m := yearMonthRe.FindStringSubmatch(n); m != nil {
		year, _ := strconv.Atoi(m[1])
		return Key(year, monthNames[m[2]]), true
	}
	if m := monthOnlyRe.FindStringSubmatch(n); m != nil {
		month := monthNames[m[1]]
		year := today.Year()
		if int(month) < int(today.Month())-3 {
			year++
		}
		return Key(year, month), true
	}
	if m := numericDateRe.FindStringSubmatch(n); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return Key(year, time.Month(month)), true
		}
	}
	return "", false
}

// MonthFromSheetName reads a month title such as "FEBRUARY 2026" from a sheet name.
// Unlike MonthKeyFromFilename it never guesses the year.
func MonthFromSheetName(name string) (string, bool) {
	n := clean(name)
	if m := monthYearRe.FindStringSubmatch(n); m != nil {
		year, _ := strconv.Atoi(m[2])
		return Key(year, monthNames[m[1]]), true
	}
	if m := yearMonthRe.FindStringSubmatch(n); m != nil {
		year, _ := strconv.Atoi(m[1])
		return Key(year, monthNames[m[2]]), true
	}
	return "", false
}

// Today returns midnight of the current day in loc.
func Today(loc *time.Location) time.Time {
	return Day(time.Now(), loc)
}

// Day truncates t to midnight in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// MonthDays returns midnight of every day in the month containing t, in t's location.
func MonthDays(t time.Time) []time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	var days []time.Time
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// SameMonth reports whether key names the month containing t.
func SameMonth(key string, t time.Time) bool {
	return key == Key(t.Year(), t.Month())
}

func clean(name string) string {
	n := strings.ToLower(name)
	if i := strings.LastIndex(n, "."); i > 0 && len(n)-i <= 5 {
		n = n[:i]
	}
	n = separatorRe.ReplaceAllString(n, " ")
	n = yearSuffixRe.ReplaceAllString(n, "$1")
	return strings.Join(strings.Fields(n), " ")
}
