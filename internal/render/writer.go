package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hyperjump/dutyroster/internal/models"
	"go.uber.org/zap"
)

const (
	pageFile   = "index.html"
	rosterFile = "roster.json"
	metaFile   = "meta.json"
	nowDir     = "now"
	dateLayout = "2006-01-02"
)

// Manifest is written to meta.json after every publish.
type Manifest struct {
	Latest      string    `json:"latest"`
	Dates       []string  `json:"dates"`
	Source      string    `json:"source,omitempty"`
	SnapshotID  string    `json:"snapshot_id,omitempty"`
	Employees   int       `json:"employees"`
	Departments int       `json:"departments"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Writer lays out published days under a directory.
type Writer struct {
	dir      string
	renderer *Renderer
	logger   *zap.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLogger sets the writer logger.
func WithLogger(logger *zap.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, renderer *Renderer, opts ...WriterOption) *Writer {
	w := &Writer{dir: dir, renderer: renderer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output root.
func (w *Writer) Dir() string {
	return w.dir
}

// DayPath returns the HTML page path for a YYYY-MM-DD date key.
func (w *Writer) DayPath(date string) string {
	return filepath.Join(w.dir, date, pageFile)
}

// WriteDay writes the day page, its JSON, the redirect page and the manifest.
func (w *Writer) WriteDay(roster *models.Roster, meta Meta) (*Manifest, error) {
	if roster == nil {
		return nil, fmt.Errorf("write day: nil roster")
	}
	date := roster.DateKey()

	var page bytes.Buffer
	if err := w.renderer.Page(&page, roster, meta); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(filepath.Join(w.dir, date, pageFile), page.Bytes()); err != nil {
		return nil, err
	}

	var doc bytes.Buffer
	if err := w.renderer.JSON(&doc, roster, meta); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(filepath.Join(w.dir, date, rosterFile), doc.Bytes()); err != nil {
		return nil, err
	}

	dates, err := w.Dates()
	if err != nil {
		return nil, err
	}
	latest := date
	if len(dates) > 0 {
		latest = dates[len(dates)-1]
	}

	var redirect bytes.Buffer
	if err := w.renderer.Redirect(&redirect, latest); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(filepath.Join(w.dir, nowDir, pageFile), redirect.Bytes()); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Latest:      latest,
		Dates:       dates,
		Source:      meta.Source,
		SnapshotID:  meta.SnapshotID,
		Employees:   roster.TotalEmployees(),
		Departments: len(roster.Departments),
		GeneratedAt: meta.GeneratedAt,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(w.dir, metaFile), data); err != nil {
		return nil, err
	}

	w.logger.Info("Wrote roster day",
		zap.String("date", date),
		zap.String("dir", w.dir),
		zap.Int("employees", manifest.Employees))
	return manifest, nil
}

// Dates lists the published YYYY-MM-DD directories in ascending order.
func (w *Writer) Dates() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list output dir: %w", err)
	}
	dates := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(dateLayout, e.Name()); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(w.dir, e.Name(), pageFile)); err != nil {
			continue
		}
		dates = append(dates, e.Name())
	}
	sort.Strings(dates)
	return dates, nil
}

// ReadManifest loads meta.json from the output root.
func (w *Writer) ReadManifest() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, metaFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
