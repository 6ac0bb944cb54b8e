package models

import "fmt"

// EmployeeQuery is a directory lookup request.
type EmployeeQuery struct {
	Query      string `json:"query"`
	Department string `json:"department,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Fuzzy      bool   `json:"fuzzy,omitempty"`
}

// Validate ensures the query has a search term and clamps the limit to [1,100], defaulting to 10.
func (q *EmployeeQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}
