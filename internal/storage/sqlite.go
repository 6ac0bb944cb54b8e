package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/dutyroster/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		source TEXT,
		month_key TEXT,
		date TEXT NOT NULL,
		content_hash TEXT,
		employees INTEGER NOT NULL DEFAULT 0,
		departments INTEGER NOT NULL DEFAULT 0,
		roster TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_date ON snapshots(date, created_at);
	CREATE INDEX IF NOT EXISTS idx_snapshots_source ON snapshots(source_id, created_at);

	CREATE TABLE IF NOT EXISTS snapshot_departments (
		snapshot_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		sheet TEXT,
		employees INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (snapshot_id, position),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS workbooks (
		content_hash TEXT PRIMARY KEY,
		name TEXT,
		ext TEXT,
		content BLOB NOT NULL,
		saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

const snapshotColumns = `id, source_id, source, month_key, date, content_hash, employees, departments, roster, created_at`

// SaveSnapshot inserts a snapshot and its per-department counts in one transaction.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if snap.Roster == nil {
		return errors.New("snapshot has no roster")
	}
	rosterJSON, err := json.Marshal(snap.Roster)
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	snap.Employees = snap.Roster.TotalEmployees()
	snap.Departments = len(snap.Roster.Departments)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (`+snapshotColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.SourceID, snap.Source, snap.MonthKey, snap.Date, snap.ContentHash,
		snap.Employees, snap.Departments, string(rosterJSON), snap.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_departments (snapshot_id, position, name, sheet, employees, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, d := range snap.Roster.Departments {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, d.Name, d.Sheet, d.Buckets.Count(), len(d.Active)); err != nil {
			return fmt.Errorf("failed to insert department %q: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// GetSnapshot returns a snapshot with its roster by ID.
func (s *SQLiteStorage) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %w: %s", ErrNotFound, id)
	}
	return snap, err
}

// LatestSnapshot returns the newest snapshot for date.
func (s *SQLiteStorage) LatestSnapshot(ctx context.Context, date string) (*models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE date = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, date)
	snap, err := scanSnapshot(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot for %s %w", date, ErrNotFound)
	}
	return snap, err
}

// LatestBySource returns the newest snapshot published from sourceID.
func (s *SQLiteStorage) LatestBySource(ctx context.Context, sourceID string) (*models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE source_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, sourceID)
	snap, err := scanSnapshot(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot for source %s %w", sourceID, ErrNotFound)
	}
	return snap, err
}

// ListSnapshots returns snapshot headers with offset and limit, newest first.
func (s *SQLiteStorage) ListSnapshots(ctx context.Context, offset, limit int) ([]*models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots
		 ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*models.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// CountSnapshots returns the total number of snapshots.
func (s *SQLiteStorage) CountSnapshots(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&count)
	return count, err
}

// PruneBefore removes snapshots older than cutoff together with their department rows.
func (s *SQLiteStorage) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshot_departments WHERE snapshot_id IN
		 (SELECT id FROM snapshots WHERE created_at < ?)`, cutoff.UTC()); err != nil {
		return 0, err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	n, _ := result.RowsAffected()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM workbooks WHERE content_hash NOT IN
		 (SELECT content_hash FROM snapshots WHERE content_hash IS NOT NULL)
		 AND saved_at < ?`, cutoff.UTC()); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// SaveWorkbook upserts workbook bytes by content hash.
func (s *SQLiteStorage) SaveWorkbook(ctx context.Context, wb *models.CachedWorkbook) error {
	if wb.ContentHash == "" || len(wb.Content) == 0 {
		return errors.New("cached workbook needs a content hash and content")
	}
	if wb.SavedAt.IsZero() {
		wb.SavedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workbooks (content_hash, name, ext, content, saved_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET name = excluded.name, saved_at = excluded.saved_at`,
		wb.ContentHash, wb.Name, wb.Ext, wb.Content, wb.SavedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// GetWorkbook returns cached workbook bytes by content hash.
func (s *SQLiteStorage) GetWorkbook(ctx context.Context, contentHash string) (*models.CachedWorkbook, error) {
	var wb models.CachedWorkbook
	var name, ext sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash, name, ext, content, saved_at FROM workbooks WHERE content_hash = ?`,
		contentHash,
	).Scan(&wb.ContentHash, &name, &ext, &wb.Content, &wb.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workbook %w: %s", ErrNotFound, contentHash)
	}
	if err != nil {
		return nil, err
	}
	wb.Name = name.String
	wb.Ext = ext.String
	return &wb, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, withRoster bool) (*models.Snapshot, error) {
	var snap models.Snapshot
	var source, monthKey, contentHash sql.NullString
	var rosterJSON string
	if err := row.Scan(&snap.ID, &snap.SourceID, &source, &monthKey, &snap.Date, &contentHash,
		&snap.Employees, &snap.Departments, &rosterJSON, &snap.CreatedAt); err != nil {
		return nil, err
	}
	snap.Source = source.String
	snap.MonthKey = monthKey.String
	snap.ContentHash = contentHash.String
	if withRoster {
		var r models.Roster
		if err := json.Unmarshal([]byte(rosterJSON), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roster: %w", err)
		}
		snap.Roster = &r
	}
	return &snap, nil
}
