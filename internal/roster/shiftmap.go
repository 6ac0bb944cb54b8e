package roster

import (
	"strings"

	"github.com/hyperjump/dutyroster/internal/models"
)

// Rule is one step of the mapper's ordered rule table. Match receives the code
// uppercased with whitespace collapsed.
type Rule struct {
	Name  string
	Match func(code string) (models.ShiftCode, bool)
}

// Mapper turns raw duty codes into a display label and a category.
// Rules are tried in order and the first match wins.
type Mapper struct {
	table map[string]models.ShiftCode
	rules []Rule
}

// NewMapper creates a mapper over the given code table. A nil table uses DefaultShiftCodes.
func NewMapper(table map[string]models.ShiftCode) *Mapper {
	if table == nil {
		table = DefaultShiftCodes()
	}
	m := &Mapper{table: make(map[string]models.ShiftCode, len(table))}
	for code, sc := range table {
		m.table[tableKey(code)] = sc
	}
	m.rules = []Rule{
		{Name: "empty", Match: matchEmpty},
		{Name: "leave", Match: matchLeave},
		{Name: "training", Match: matchTraining},
		{Name: "standby", Match: matchStandby},
		{Name: "rest", Match: matchRest},
		{Name: "table", Match: m.matchTable},
	}
	return m
}

// Map returns the label and category for a raw code. Unknown codes keep their
// normalized text as label under Other.
func (m *Mapper) Map(raw string) (string, models.Category) {
	code := upper(raw)
	for _, r := range m.rules {
		if sc, ok := r.Match(code); ok {
			return sc.Label, sc.Category
		}
	}
	return NormalizeText(raw), models.Other
}

// Rules returns the rule names in evaluation order, ending with the fallback.
func (m *Mapper) Rules() []string {
	names := make([]string, 0, len(m.rules)+1)
	for _, r := range m.rules {
		names = append(names, r.Name)
	}
	return append(names, "fallback")
}

// Shadowed returns the table codes that an earlier rule captures before the
// table lookup is reached.
func (m *Mapper) Shadowed() []string {
	var out []string
	for code := range m.table {
		for _, r := range m.rules {
			if r.Name == "table" {
				break
			}
			if _, ok := r.Match(code); ok {
				out = append(out, code)
				break
			}
		}
	}
	return out
}

// Known reports whether raw is a key of the code table. Extraction uses it to keep
// site-specific codes that do not look like the built-in vocabulary.
func (m *Mapper) Known(raw string) bool {
	key := tableKey(raw)
	if key == "" {
		return false
	}
	_, ok := m.table[key]
	return ok
}

func (m *Mapper) matchTable(code string) (models.ShiftCode, bool) {
	sc, ok := m.table[tableKey(code)]
	return sc, ok
}

func tableKey(code string) string {
	return strings.ReplaceAll(upper(code), " ", "")
}

func matchEmpty(code string) (models.ShiftCode, bool) {
	switch code {
	case "", "0", "0.0", "-":
		return models.ShiftCode{Label: "-", Category: models.Other}, true
	}
	return models.ShiftCode{}, false
}

func matchLeave(code string) (models.ShiftCode, bool) {
	switch {
	case isLiteral(code, annualLeaveLiterals) || strings.Contains(code, "ANNUAL"):
		return models.ShiftCode{Label: "Annual Leave", Category: models.Leave}, true
	case isLiteral(code, sickLeaveLiterals) || strings.Contains(code, "SICK"):
		return models.ShiftCode{Label: "Sick Leave", Category: models.Leave}, true
	case isLiteral(code, leaveLiterals) || strings.Contains(code, "LEAVE") || containsAnyPhrase(code, leavePhrases):
		return models.ShiftCode{Label: "Leave", Category: models.Leave}, true
	}
	return models.ShiftCode{}, false
}

func matchTraining(code string) (models.ShiftCode, bool) {
	if isLiteral(code, trainingLiterals) || strings.Contains(code, "TRAIN") || containsAnyPhrase(code, trainingPhrases) {
		return models.ShiftCode{Label: "Training", Category: models.Training}, true
	}
	return models.ShiftCode{}, false
}

func matchStandby(code string) (models.ShiftCode, bool) {
	if isLiteral(code, standbyLiterals) || strings.Contains(code, "STANDBY") || containsAnyPhrase(code, standbyPhrases) {
		return models.ShiftCode{Label: "Standby", Category: models.Standby}, true
	}
	return models.ShiftCode{}, false
}

func matchRest(code string) (models.ShiftCode, bool) {
	if isLiteral(code, restLiterals) || containsAnyPhrase(code, restPhrases) {
		return models.ShiftCode{Label: "Off Day", Category: models.Rest}, true
	}
	return models.ShiftCode{}, false
}
