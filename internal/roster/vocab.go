package roster

import (
	"strings"
	"time"
	"unicode"
)

// Weekdays maps each weekday to the header tokens that denote it.
// Tokens are compared against whole words of the uppercased, normalized cell text.
type Weekdays map[time.Weekday][]string

// DefaultWeekdays returns the built-in weekday vocabulary: three-letter and full English names plus Arabic names.
func DefaultWeekdays() Weekdays {
	return Weekdays{
		time.Sunday:    {"SUN", "SUNDAY", "الأحد", "الاحد"},
		time.Monday:    {"MON", "MONDAY", "الاثنين", "الإثنين"},
		time.Tuesday:   {"TUE", "TUES", "TUESDAY", "الثلاثاء"},
		time.Wednesday: {"WED", "WEDNESDAY", "الأربعاء", "الاربعاء"},
		time.Thursday:  {"THU", "THUR", "THURS", "THURSDAY", "الخميس"},
		time.Friday:    {"FRI", "FRIDAY", "الجمعة"},
		time.Saturday:  {"SAT", "SATURDAY", "السبت"},
	}
}

// index builds the token -> weekday lookup.
func (w Weekdays) index() map[string]time.Weekday {
	idx := make(map[string]time.Weekday)
	for day, tokens := range w {
		for _, tok := range tokens {
			idx[strings.ToUpper(NormalizeText(tok))] = day
		}
	}
	return idx
}

// headerKeywords mark the row that labels the employee column.
var headerKeywords = []string{"EMPLOYEE", "EMPLOYEES", "STAFF", "NAME", "EMP NAME", "الاسم", "اسم الموظف", "الموظف"}

// Literal duty codes, compared after uppercasing and whitespace collapse.
var (
	annualLeaveLiterals = []string{"AL", "A/L", "ANNUAL"}
	sickLeaveLiterals   = []string{"SL", "S/L", "SICK"}
	leaveLiterals       = []string{"L", "LV", "EL", "ML", "LEAVE"}
	trainingLiterals    = []string{"TR", "TRN", "TRAINING"}
	standbyLiterals     = []string{"ST", "SB", "STBY", "STANDBY"}
	restLiterals        = []string{"O", "OFF", "OFFDAY", "OFF DAY", "DO", "RD", "REST"}
)

// Keyword phrases matched on word boundaries.
var (
	annualLeavePhrases = []string{"ANNUAL"}
	sickLeavePhrases   = []string{"SICK"}
	leavePhrases       = []string{"LEAVE", "VACATION", "إجازة", "اجازة"}
	trainingPhrases    = []string{"TRAINING", "COURSE", "تدريب"}
	standbyPhrases     = []string{"STANDBY", "احتياط", "احتياطي"}
	restPhrases        = []string{"OFF DAY", "DAY OFF", "REST DAY", "REST", "راحة"}
)

// shiftPrefixes are the two-letter shift-type prefixes that precede a 1-2 digit hour.
var shiftPrefixes = []string{"MN", "ME", "AN", "AE", "NN", "NE", "ST", "SB"}

// nonNamePhrases rejects a cell as an employee name.
func nonNamePhrases() [][]string {
	return [][]string{annualLeavePhrases, sickLeavePhrases, leavePhrases, trainingPhrases, restPhrases}
}

// dutyPhrases marks a cell as a duty code.
func dutyPhrases() [][]string {
	return [][]string{annualLeavePhrases, sickLeavePhrases, leavePhrases, trainingPhrases, standbyPhrases, restPhrases}
}

// dutyVocabulary is the fixed set of short literal codes recognized as duty markers.
func dutyVocabulary() map[string]bool {
	vocab := make(map[string]bool)
	for _, set := range [][]string{annualLeaveLiterals, sickLeaveLiterals, leaveLiterals, trainingLiterals, standbyLiterals, restLiterals} {
		for _, lit := range set {
			vocab[lit] = true
		}
	}
	return vocab
}

// words splits text into letter/digit runs.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
}

// containsPhrase reports whether phrase occurs in text as a contiguous run of whole words.
// Both sides are expected uppercased and normalized.
func containsPhrase(text, phrase string) bool {
	tw := words(text)
	pw := words(phrase)
	if len(pw) == 0 || len(pw) > len(tw) {
		return false
	}
	for i := 0; i+len(pw) <= len(tw); i++ {
		match := true
		for j := range pw {
			if tw[i+j] != pw[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func containsAnyPhrase(text string, sets ...[]string) bool {
	for _, set := range sets {
		for _, p := range set {
			if containsPhrase(text, p) {
				return true
			}
		}
	}
	return false
}

func isLiteral(code string, set []string) bool {
	for _, lit := range set {
		if code == lit {
			return true
		}
	}
	return false
}
