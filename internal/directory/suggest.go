package directory

import (
	"sort"
	"strings"
)

// Suggestion is a known employee name close to a query.
type Suggestion struct {
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// Suggest returns up to n indexed names within maxDistance edits of query,
// closest first. Whole names and single name parts are both compared.
func (d *Index) Suggest(query string, maxDistance, n int) []Suggestion {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" || n <= 0 {
		return nil
	}
	if maxDistance <= 0 {
		maxDistance = 2
	}

	d.mu.RLock()
	names := d.names
	d.mu.RUnlock()

	var out []Suggestion
	for _, name := range names {
		best := LevenshteinDistance(q, strings.ToLower(name))
		for _, part := range strings.Fields(strings.ToLower(name)) {
			best = min(best, LevenshteinDistance(q, part))
		}
		if best <= maxDistance {
			out = append(out, Suggestion{Name: name, Distance: best})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// LevenshteinDistance calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one string into another.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	if len(runesA) == 0 {
		return len(runesB)
	}
	if len(runesB) == 0 {
		return len(runesA)
	}

	// Two rows are enough.
	prev := make([]int, len(runesB)+1)
	curr := make([]int, len(runesB)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(runesA); i++ {
		curr[0] = i
		for j := 1; j <= len(runesB); j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(runesB)]
}
