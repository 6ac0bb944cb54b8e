package models

// EmployeeHit is a single directory search hit.
type EmployeeHit struct {
	Name       string   `json:"name"`
	Department string   `json:"department"`
	Label      string   `json:"label"`
	Category   Category `json:"category"`
	Date       string   `json:"date"`
	Score      float64  `json:"score"`
}
