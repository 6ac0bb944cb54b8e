// Package storage defines the persistence interface for publish snapshots.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/dutyroster/internal/models"
)

// ErrNotFound is returned when a snapshot or cached workbook does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines snapshot persistence operations.
type Storage interface {
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
	// LatestSnapshot returns the newest snapshot for a YYYY-MM-DD date.
	LatestSnapshot(ctx context.Context, date string) (*models.Snapshot, error)
	// LatestBySource returns the newest snapshot published from a source.
	LatestBySource(ctx context.Context, sourceID string) (*models.Snapshot, error)
	// ListSnapshots returns snapshots newest first, without rosters.
	ListSnapshots(ctx context.Context, offset, limit int) ([]*models.Snapshot, error)
	CountSnapshots(ctx context.Context) (int64, error)
	// PruneBefore deletes snapshots created before cutoff and returns how many were removed.
	// Cached workbooks no longer referenced by a snapshot go with them.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// SaveWorkbook stores workbook bytes keyed by content hash. Saving the same
	// content again only refreshes its name and timestamp.
	SaveWorkbook(ctx context.Context, wb *models.CachedWorkbook) error
	GetWorkbook(ctx context.Context, contentHash string) (*models.CachedWorkbook, error)

	Close() error
}
