package roster

import (
	"testing"

	"github.com/hyperjump/dutyroster/internal/models"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"  Ahmed \t Ali\n", "Ahmed Ali"},
		{"Ahmed Ali", "Ahmed Ali"},
		{"Ahmed   Ali", "Ahmed Ali"},
		{"١٥", "15"},
		{"۲۰۲۶", "2026"},
		{"\ufeffMN06", "MN06"},
		{"محمد   علي", "محمد علي"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Values(t *testing.T) {
	tests := []struct {
		in   models.Value
		want string
	}{
		{models.EmptyValue(), ""},
		{models.NumberValue(15), "15"},
		{models.NumberValue(15.0), "15"},
		{models.NumberValue(7.5), "7.5"},
		{models.TextValue(" MN06 "), "MN06"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"  a  b ", "١ ٢", "x  y"} {
		once := NormalizeText(s)
		if twice := NormalizeText(once); twice != once {
			t.Errorf("NormalizeText not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in   models.Value
		want int
		ok   bool
	}{
		{models.NumberValue(15), 15, true},
		{models.TextValue("15"), 15, true},
		{models.TextValue("15.0"), 15, true},
		{models.TextValue("١٥"), 15, true},
		{models.NumberValue(1), 1, true},
		{models.NumberValue(31), 31, true},
		{models.NumberValue(0), 0, false},
		{models.NumberValue(32), 0, false},
		{models.NumberValue(15.5), 0, false},
		{models.TextValue("MON"), 0, false},
		{models.TextValue(""), 0, false},
		{models.EmptyValue(), 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDay(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDay(%+v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
