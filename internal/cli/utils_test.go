package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/dutyroster/internal/directory"
	"github.com/hyperjump/dutyroster/internal/models"
)

func sampleRoster() *models.Roster {
	b := models.Buckets{}
	b.Add(models.Morning, models.Entry{Name: "Ahmed Ali - 1023", Label: "Morning 06:00-14:00"})
	b.Add(models.Leave, models.Entry{Name: "Sara Al Harthy", Label: "Annual Leave"})
	return &models.Roster{
		Date:           time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC),
		ActiveCategory: models.Morning,
		Departments: []models.Department{
			{Name: "Officers", Buckets: b},
			{Name: "Engineers", Buckets: models.Buckets{}},
		},
		Problems: []models.Problem{{Sheet: "Notes", Err: "missing day header row"}},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = (%q, %v)", tt.in, got, err)
		}
	}
}

func TestWriteRoster_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRoster(&buf, sampleRoster(), OutputText); err != nil {
		t.Fatalf("WriteRoster: %v", err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Tuesday 03 February 2026",
		"on duty now: Morning",
		"2 employees across 2 departments",
		"Officers (2)",
		"Ahmed Ali - 1023",
		"Annual Leave",
		"No assignments found",
		"Skipped 1 sheet:",
		"Notes: missing day header row",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if strings.Index(out, "Morning (1)") > strings.Index(out, "Leave (1)") {
		t.Error("categories should print in render order")
	}
}

func TestWriteRoster_json(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRoster(&buf, sampleRoster(), OutputJSON); err != nil {
		t.Fatalf("WriteRoster: %v", err)
	}
	var decoded models.Roster
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalEmployees() != 2 || decoded.ActiveCategory != models.Morning {
		t.Errorf("unexpected decoded roster %+v", decoded)
	}
}

func TestWriteNow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNow(&buf, sampleRoster(), models.Morning, OutputText); err != nil {
		t.Fatalf("WriteNow: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Ahmed Ali - 1023") || strings.Contains(out, "Sara Al Harthy") {
		t.Errorf("only the active category should print:\n%s", out)
	}
	if !strings.Contains(out, "nobody") {
		t.Errorf("empty departments should say nobody:\n%s", out)
	}

	buf.Reset()
	if err := WriteNow(&buf, sampleRoster(), models.Night, OutputJSON); err != nil {
		t.Fatalf("WriteNow(json): %v", err)
	}
	var decoded struct {
		ActiveCategory models.Category `json:"active_category"`
		Departments    []struct {
			Entries []models.Entry `json:"entries"`
		} `json:"departments"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ActiveCategory != models.Night || len(decoded.Departments) != 2 || decoded.Departments[0].Entries == nil {
		t.Errorf("unexpected JSON %s", buf.String())
	}
}

func TestWriteHits(t *testing.T) {
	var buf bytes.Buffer
	hits := []models.EmployeeHit{{Name: "Yusuf Amir", Department: "Officers", Category: models.Night, Label: "Night 21:00-05:00"}}
	if err := WriteHits(&buf, hits, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Yusuf Amir") || !strings.Contains(buf.String(), "Night 21:00-05:00") {
		t.Errorf("unexpected hit output:\n%s", buf.String())
	}

	buf.Reset()
	sugg := []directory.Suggestion{{Name: "Yusuf Amir", Distance: 1}, {Name: "Yousef Said", Distance: 2}}
	if err := WriteHits(&buf, nil, sugg, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Did you mean: Yusuf Amir, Yousef Said") {
		t.Errorf("unexpected suggestion output:\n%s", buf.String())
	}
}

func TestWriteSnapshots(t *testing.T) {
	snaps := []*models.Snapshot{{ID: "snap-1", Date: "2026-02-03", Employees: 12, Source: "IMP_FEB_2026.xlsx", CreatedAt: time.Now()}}
	var buf bytes.Buffer
	if err := WriteSnapshots(&buf, snaps, 1, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "1 snapshot stored") || !strings.Contains(buf.String(), "IMP_FEB_2026.xlsx") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteSnapshots(&buf, snaps, 1, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.Total != 1 {
		t.Errorf("unexpected JSON (%v): %s", err, buf.String())
	}
}
