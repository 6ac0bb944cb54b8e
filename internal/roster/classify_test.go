package roster

import (
	"strings"
	"testing"
)

func TestIsTimeLike(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0600-1400", true},
		{"0600", true},
		{"600", true},
		{"0600H-1400H", true},
		{"0600 - 1400", true},
		{"0600h", true},
		{"MN06", false},
		{"06", false},
		{"", false},
		{"Ahmed Ali", false},
	}
	for _, tt := range tests {
		if got := IsTimeLike(tt.in); got != tt.want {
			t.Errorf("IsTimeLike(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsEmployeeNameLike(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Ahmed Ali - 1023", true},
		{"Ahmed Ali-1023", true},
		{"Ahmed Ali", true},
		{"محمد علي", true},
		{"Restrepo Gomez", true},
		{"Ali", false},
		{"1023", false},
		{"", false},
		{"0600-1400", false},
		{"SUN", false},
		{"MON TUE", false},
		{"Sunday Monday", false},
		{"Annual Leave", false},
		{"Off Day", false},
		{"Training Course", false},
	}
	for _, tt := range tests {
		if got := IsEmployeeNameLike(tt.in); got != tt.want {
			t.Errorf("IsEmployeeNameLike(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsEmployeeNameLike_weekdayTokens(t *testing.T) {
	for day, tokens := range DefaultWeekdays() {
		for _, tok := range tokens {
			if IsEmployeeNameLike(tok) {
				t.Errorf("IsEmployeeNameLike(%q) = true for %v, want false", tok, day)
			}
		}
	}
	for _, tok := range shortDays {
		if IsEmployeeNameLike(tok) {
			t.Errorf("IsEmployeeNameLike(%q) = true, want false", tok)
		}
		if IsEmployeeNameLike(strings.ToLower(tok) + " " + tok) {
			t.Errorf("IsEmployeeNameLike(%q) = true, want false", strings.ToLower(tok)+" "+tok)
		}
	}
}

func TestIsShiftCodeLike(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"MN06", true},
		{"mn6", true},
		{"NE19", true},
		{"ST", true},
		{"AL", true},
		{"off", true},
		{"TRN", true},
		{"Annual Leave", true},
		{"day off", true},
		{"MN123", false},
		{"XY06", false},
		{"0600-1400", false},
		{"", false},
		{"see note", false},
	}
	for _, tt := range tests {
		if got := IsShiftCodeLike(tt.in); got != tt.want {
			t.Errorf("IsShiftCodeLike(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
