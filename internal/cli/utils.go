// Package cli formats roster results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/dutyroster/internal/directory"
	"github.com/hyperjump/dutyroster/internal/models"
	"github.com/hyperjump/dutyroster/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("invalid output format %q (use text or json)", s)
}

const nameWidth = 32

// WriteRoster writes every department's buckets.
func WriteRoster(w io.Writer, r *models.Roster, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "\nDuty roster for %s (on duty now: %s)\n", r.Date.Format("Monday 02 January 2006"), r.ActiveCategory)
	fmt.Fprintf(w, "%d %s across %d %s\n",
		r.TotalEmployees(), utils.Plural(r.TotalEmployees(), "employee"),
		len(r.Departments), utils.Plural(len(r.Departments), "department"))
	for _, d := range r.Departments {
		fmt.Fprintf(w, "\n═══ %s (%d) ═══\n", d.Name, d.Buckets.Count())
		if d.Buckets.Count() == 0 {
			fmt.Fprintln(w, "  No assignments found for this day.")
			continue
		}
		d.Buckets.Each(func(c models.Category, entries []models.Entry) {
			fmt.Fprintf(w, "  %s (%d)\n", c, len(entries))
			writeEntries(w, entries)
		})
	}
	writeProblems(w, r.Problems)
	return nil
}

// WriteNow writes only the entries of the active category.
func WriteNow(w io.Writer, r *models.Roster, active models.Category, format OutputFormat) error {
	if format == OutputJSON {
		type dept struct {
			Name    string         `json:"name"`
			Entries []models.Entry `json:"entries"`
		}
		out := struct {
			Date           string          `json:"date"`
			ActiveCategory models.Category `json:"active_category"`
			Departments    []dept          `json:"departments"`
		}{Date: r.DateKey(), ActiveCategory: active, Departments: []dept{}}
		for _, d := range r.Departments {
			entries := d.Buckets[active]
			if entries == nil {
				entries = []models.Entry{}
			}
			out.Departments = append(out.Departments, dept{Name: d.Name, Entries: entries})
		}
		return writeJSON(w, out)
	}
	fmt.Fprintf(w, "\nOn duty now (%s), %s\n", active, r.Date.Format("02 Jan 2006"))
	for _, d := range r.Departments {
		entries := d.Buckets[active]
		fmt.Fprintf(w, "\n%s (%d)\n", d.Name, len(entries))
		if len(entries) == 0 {
			fmt.Fprintln(w, "  nobody")
			continue
		}
		writeEntries(w, entries)
	}
	return nil
}

// WriteHits writes employee directory hits, or suggestions when there are none.
func WriteHits(w io.Writer, hits []models.EmployeeHit, suggestions []directory.Suggestion, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, struct {
			Hits        []models.EmployeeHit   `json:"hits"`
			Suggestions []directory.Suggestion `json:"suggestions,omitempty"`
		}{hits, suggestions})
	}
	if len(hits) == 0 {
		fmt.Fprintln(w, "No employees found.")
		if len(suggestions) > 0 {
			fmt.Fprint(w, "Did you mean: ")
			for i, s := range suggestions {
				if i > 0 {
					fmt.Fprint(w, ", ")
				}
				fmt.Fprint(w, s.Name)
			}
			fmt.Fprintln(w)
		}
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(w, "%s %-16s %-10s %s\n", utils.PadRight(utils.Truncate(h.Name, nameWidth), nameWidth+3), h.Department, h.Category, h.Label)
	}
	return nil
}

// WriteSnapshots writes a snapshot listing, newest first.
func WriteSnapshots(w io.Writer, snaps []*models.Snapshot, total int64, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, struct {
			Snapshots []*models.Snapshot `json:"snapshots"`
			Total     int64              `json:"total"`
		}{snaps, total})
	}
	fmt.Fprintf(w, "%d %s stored\n", total, utils.Plural(int(total), "snapshot"))
	for _, s := range snaps {
		fmt.Fprintf(w, "  %s  %s  %3d employees  %s  (%s)\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Date, s.Employees, s.Source, s.ID)
	}
	return nil
}

func writeEntries(w io.Writer, entries []models.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "    %s %s\n", utils.PadRight(utils.Truncate(e.Name, nameWidth), nameWidth+3), e.Label)
	}
}

func writeProblems(w io.Writer, problems []models.Problem) {
	if len(problems) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped %d %s:\n", len(problems), utils.Plural(len(problems), "sheet"))
	for _, p := range problems {
		fmt.Fprintf(w, "  %s: %s\n", p.Sheet, p.Err)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
