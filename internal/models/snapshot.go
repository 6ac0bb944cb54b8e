package models

import "time"

// Snapshot is a persisted record of one publish run.
type Snapshot struct {
	ID          string    `json:"id" db:"id"`
	SourceID    string    `json:"source_id" db:"source_id"`
	Source      string    `json:"source" db:"source"`
	MonthKey    string    `json:"month_key,omitempty" db:"month_key"`
	Date        string    `json:"date" db:"date"`
	ContentHash string    `json:"content_hash,omitempty" db:"content_hash"`
	Employees   int       `json:"employees" db:"employees"`
	Departments int       `json:"departments" db:"departments"`
	Roster      *Roster   `json:"roster,omitempty" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CachedWorkbook holds the raw bytes a snapshot was extracted from, so a later
// publish can reuse them when the source cannot be downloaded.
type CachedWorkbook struct {
	ContentHash string    `json:"content_hash" db:"content_hash"`
	Name        string    `json:"name" db:"name"`
	Ext         string    `json:"ext,omitempty" db:"ext"`
	Content     []byte    `json:"-" db:"content"`
	SavedAt     time.Time `json:"saved_at" db:"saved_at"`
}
