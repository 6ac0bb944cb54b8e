package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category is a duty classification used to group employees for display.
type Category int

const (
	// Morning is the early shift.
	Morning Category = iota
	// Afternoon is the day/evening shift.
	Afternoon
	// Night is the overnight shift.
	Night
	// Standby is on-call duty.
	Standby
	// Rest is an off day.
	Rest
	// Leave is annual, sick, or generic leave.
	Leave
	// Training is a training day.
	Training
	// Other is anything unrecognized.
	Other
)

var categoryNames = [...]string{"Morning", "Afternoon", "Night", "Standby", "Rest", "Leave", "Training", "Other"}

// AllCategories returns every category in render order.
func AllCategories() []Category {
	return []Category{Morning, Afternoon, Night, Standby, Rest, Leave, Training, Other}
}

// String returns the display name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Other"
	}
	return categoryNames[c]
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if strings.ToLower(name) == want {
			return Category(i), nil
		}
	}
	switch want {
	case "off", "off day", "offday":
		return Rest, nil
	case "annual leave", "sick leave":
		return Leave, nil
	}
	return Other, fmt.Errorf("unknown category %q", s)
}

// MarshalText encodes the category as its display name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category from its display name.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ShiftCode is the display label and category a duty code maps to.
type ShiftCode struct {
	Label    string   `json:"label" yaml:"label"`
	Category Category `json:"category" yaml:"category"`
}

// Entry is one employee's assignment as shown in a bucket.
type Entry struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Buckets groups entries by category. Iterate with Each for stable order.
type Buckets map[Category][]Entry

// Add appends an entry to the category's list.
func (b Buckets) Add(c Category, e Entry) {
	b[c] = append(b[c], e)
}

// Each calls fn for every non-empty category in render order.
func (b Buckets) Each(fn func(Category, []Entry)) {
	for _, c := range AllCategories() {
		if entries := b[c]; len(entries) > 0 {
			fn(c, entries)
		}
	}
}

// Count returns the total number of entries.
func (b Buckets) Count() int {
	n := 0
	for _, entries := range b {
		n += len(entries)
	}
	return n
}

// MarshalJSON writes buckets as an ordered list so output is stable.
func (b Buckets) MarshalJSON() ([]byte, error) {
	type group struct {
		Category Category `json:"category"`
		Entries  []Entry  `json:"entries"`
	}
	groups := []group{}
	b.Each(func(c Category, entries []Entry) {
		groups = append(groups, group{Category: c, Entries: entries})
	})
	return json.Marshal(groups)
}

// UnmarshalJSON reads the ordered list form written by MarshalJSON.
func (b *Buckets) UnmarshalJSON(data []byte) error {
	var groups []struct {
		Category Category `json:"category"`
		Entries  []Entry  `json:"entries"`
	}
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	out := make(Buckets, len(groups))
	for _, g := range groups {
		out[g.Category] = append(out[g.Category], g.Entries...)
	}
	*b = out
	return nil
}

// Department is one department's roster for the target date.
type Department struct {
	Name    string  `json:"name"`
	Sheet   string  `json:"sheet"`
	Buckets Buckets `json:"buckets"`
	// Active holds the entries whose category is the roster's active category.
	Active []Entry `json:"active"`
}

// Problem is a non-fatal per-sheet diagnostic.
type Problem struct {
	Sheet string `json:"sheet"`
	Err   string `json:"error"`
}

// Roster is the bucketed duty roster for one date across departments in table order.
type Roster struct {
	Date           time.Time    `json:"date"`
	ActiveCategory Category     `json:"active_category"`
	Departments    []Department `json:"departments"`
	Problems       []Problem    `json:"problems,omitempty"`
}

// Department returns the department with the given display name, or nil.
func (r *Roster) Department(name string) *Department {
	if r == nil {
		return nil
	}
	for i := range r.Departments {
		if r.Departments[i].Name == name {
			return &r.Departments[i]
		}
	}
	return nil
}

// TotalEmployees returns the number of bucketed entries across departments.
func (r *Roster) TotalEmployees() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, d := range r.Departments {
		n += d.Buckets.Count()
	}
	return n
}

// DateKey returns the roster date as YYYY-MM-DD.
func (r *Roster) DateKey() string {
	return r.Date.Format("2006-01-02")
}
