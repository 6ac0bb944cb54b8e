package roster

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	timeLikeRe   = regexp.MustCompile(`^\d{3,4}H?(-\d{3,4}H?)?$`)
	employeeIDRe = regexp.MustCompile(`-\s*\d{3,}`)
	shiftCodeRe  = regexp.MustCompile(`^(` + strings.Join(shiftPrefixes, "|") + `)\d{1,2}$`)
	defaultDays  = DefaultWeekdays().index()
	dutyVocab    = dutyVocabulary()
)

// IsTimeLike reports whether s looks like a clock time or a time range such as
// "0600", "0600H" or "0600-1400".
func IsTimeLike(s string) bool {
	u := upper(s)
	u = strings.NewReplacer(" ", "", "–", "-", "—", "-").Replace(u)
	if u == "" {
		return false
	}
	return timeLikeRe.MatchString(u)
}

// IsEmployeeNameLike reports whether s plausibly holds an employee name, optionally
// followed by "- <id>". Weekday tokens come from DefaultWeekdays.
func IsEmployeeNameLike(s string) bool {
	return isEmployeeNameLike(s, defaultDays)
}

// isEmployeeNameLike is IsEmployeeNameLike against a specific weekday index.
func isEmployeeNameLike(s string, weekdays map[string]time.Weekday) bool {
	u := upper(s)
	if u == "" || IsTimeLike(u) {
		return false
	}
	if containsAnyPhrase(u, nonNamePhrases()...) {
		return false
	}
	if allWeekdayTokens(u, weekdays) {
		return false
	}
	if !hasNameLetter(u) {
		return false
	}
	if employeeIDRe.MatchString(u) {
		return true
	}
	return len(strings.Fields(u)) >= 2
}

// IsShiftCodeLike reports whether s looks like a duty code rather than a stray note.
func IsShiftCodeLike(s string) bool {
	u := upper(s)
	if u == "" || IsTimeLike(u) {
		return false
	}
	if dutyVocab[u] {
		return true
	}
	if shiftCodeRe.MatchString(strings.ReplaceAll(u, " ", "")) {
		return true
	}
	return containsAnyPhrase(u, dutyPhrases()...)
}

func hasNameLetter(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Latin, unicode.Arabic) && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func allWeekdayTokens(s string, weekdays map[string]time.Weekday) bool {
	ws := words(s)
	if len(ws) == 0 {
		return false
	}
	for _, w := range ws {
		if _, ok := weekdays[w]; !ok {
			return false
		}
	}
	return true
}
