package roster

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/dutyroster/internal/models"
)

func TestMapper_Map(t *testing.T) {
	m := NewMapper(nil)
	tests := []struct {
		in       string
		label    string
		category models.Category
	}{
		{"", "-", models.Other},
		{"0", "-", models.Other},
		{"AL", "Annual Leave", models.Leave},
		{"al", "Annual Leave", models.Leave},
		{"SL", "Sick Leave", models.Leave},
		{"Sick leave", "Sick Leave", models.Leave},
		{"LV", "Leave", models.Leave},
		{"Emergency Leave", "Leave", models.Leave},
		{"TR", "Training", models.Training},
		{"TRAINING COURSE", "Training", models.Training},
		{"ST", "Standby", models.Standby},
		{"stby", "Standby", models.Standby},
		{"OFF", "Off Day", models.Rest},
		{"o", "Off Day", models.Rest},
		{"day off", "Off Day", models.Rest},
		{"MN06", "Morning 06:00-14:00", models.Morning},
		{"AN14", "Afternoon 14:00-22:00", models.Afternoon},
		{"NN21", "Night 21:00-05:00", models.Night},
		{"ST06", "Standby 06:00", models.Standby},
		{"MN09", "MN09", models.Other},
		{"  see  note ", "see note", models.Other},
	}
	for _, tt := range tests {
		label, category := m.Map(tt.in)
		if label != tt.label || category != tt.category {
			t.Errorf("Map(%q) = (%q, %v), want (%q, %v)", tt.in, label, category, tt.label, tt.category)
		}
	}
}

func TestMapper_TableRoundTrip(t *testing.T) {
	m := NewMapper(nil)
	for code, want := range DefaultShiftCodes() {
		variants := []string{
			code,
			strings.ToLower(code),
			"  " + code + "\t",
			code[:2] + " " + code[2:],
		}
		for _, v := range variants {
			label, category := m.Map(v)
			if label != want.Label || category != want.Category {
				t.Errorf("Map(%q) = (%q, %v), want (%q, %v)", v, label, category, want.Label, want.Category)
			}
		}
	}
}

func TestMapper_Rules(t *testing.T) {
	want := []string{"empty", "leave", "training", "standby", "rest", "table", "fallback"}
	if got := NewMapper(nil).Rules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rules() = %v, want %v", got, want)
	}
}

func TestMapper_Shadowed(t *testing.T) {
	if got := NewMapper(nil).Shadowed(); len(got) != 0 {
		t.Errorf("default table has shadowed codes: %v", got)
	}

	m := NewMapper(map[string]models.ShiftCode{
		"AL":   {Label: "Alpha", Category: models.Morning},
		"MN06": {Label: "Early", Category: models.Morning},
	})
	got := m.Shadowed()
	if len(got) != 1 || got[0] != "AL" {
		t.Errorf("Shadowed() = %v, want [AL]", got)
	}
	if label, _ := m.Map("AL"); label != "Annual Leave" {
		t.Errorf("literal rule should win over table, got %q", label)
	}
}

func TestMapper_CustomTable(t *testing.T) {
	m := NewMapper(map[string]models.ShiftCode{
		"d12": {Label: "Day 12h", Category: models.Morning},
	})
	if label, category := m.Map("D12"); label != "Day 12h" || category != models.Morning {
		t.Errorf("Map(D12) = (%q, %v)", label, category)
	}
	if _, category := m.Map("MN06"); category != models.Other {
		t.Errorf("custom table should replace defaults, got %v", category)
	}
}

func TestMapper_Known(t *testing.T) {
	m := NewMapper(map[string]models.ShiftCode{
		"D12": {Label: "Day 12h", Category: models.Morning},
	})
	tests := []struct {
		in   string
		want bool
	}{
		{"D12", true},
		{"d12", true},
		{"D 12", true},
		{"D13", false},
		{"MN06", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.Known(tt.in); got != tt.want {
			t.Errorf("Known(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !NewMapper(nil).Known("MN06") {
		t.Error("default table should know MN06")
	}
}
