// Package publish runs one roster publication: load the workbook, extract the
// day's roster, write the pages, record a snapshot and refresh the directory.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/dutyroster/internal/directory"
	"github.com/hyperjump/dutyroster/internal/fetch"
	"github.com/hyperjump/dutyroster/internal/fileid"
	"github.com/hyperjump/dutyroster/internal/models"
	"github.com/hyperjump/dutyroster/internal/period"
	"github.com/hyperjump/dutyroster/internal/render"
	"github.com/hyperjump/dutyroster/internal/roster"
	"github.com/hyperjump/dutyroster/internal/storage"
	"github.com/hyperjump/dutyroster/internal/workbook"
	"go.uber.org/zap"
)

// ErrNoSource is returned when a Source names neither a path nor a URL.
var ErrNoSource = errors.New("no roster source configured")

// Source identifies the workbook to publish.
type Source struct {
	Path string
	URL  string
	// Name overrides the display name; when empty NameURL is consulted, then
	// the file name.
	Name    string
	NameURL string
	// Date is the roster day; zero means today in the publisher's location.
	Date time.Time
	// Month publishes every day of Date's month instead of Date alone.
	Month bool
}

// Result describes a completed publish.
type Result struct {
	Snapshot      *models.Snapshot
	Roster        *models.Roster
	Manifest      *render.Manifest
	ContentHash   string
	MonthKey      string
	MonthMismatch bool
	Pruned        int64
	// Days lists every YYYY-MM-DD date written by this publish, ascending.
	Days []string
	// FromCache is set when the source could not be downloaded and the last
	// cached copy of the workbook was published instead.
	FromCache bool
	Duration  time.Duration
}

// Publisher wires the publish pipeline together. Storage, directory and writer
// are optional.
type Publisher struct {
	extractor *roster.Extractor
	decoder   *workbook.Decoder
	fetcher   *fetch.Fetcher
	storage   storage.Storage
	directory *directory.Index
	writer    *render.Writer
	location  *time.Location
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu sync.Mutex
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the publisher logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithStorage records a snapshot for every publish.
func WithStorage(s storage.Storage) Option {
	return func(p *Publisher) { p.storage = s }
}

// WithDirectory refreshes the employee directory after every publish.
func WithDirectory(d *directory.Index) Option {
	return func(p *Publisher) { p.directory = d }
}

// WithWriter writes the day pages after every publish.
func WithWriter(w *render.Writer) Option {
	return func(p *Publisher) { p.writer = w }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the timezone used for "today" and the active shift.
func WithLocation(loc *time.Location) Option {
	return func(p *Publisher) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithFetcher sets the downloader used for URL sources.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(p *Publisher) {
		if f != nil {
			p.fetcher = f
		}
	}
}

// WithDecoder sets the workbook decoder.
func WithDecoder(d *workbook.Decoder) Option {
	return func(p *Publisher) {
		if d != nil {
			p.decoder = d
		}
	}
}

// WithRetention prunes snapshots older than d after each publish. Zero keeps everything.
func WithRetention(d time.Duration) Option {
	return func(p *Publisher) { p.retention = d }
}

// NewPublisher creates a publisher around extractor.
func NewPublisher(extractor *roster.Extractor, opts ...Option) *Publisher {
	p := &Publisher{
		extractor: extractor,
		decoder:   workbook.NewDecoder(),
		fetcher:   fetch.NewFetcher(),
		location:  time.UTC,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.extractor == nil {
		p.extractor = roster.NewExtractor(nil, roster.WithLogger(p.logger))
	}
	return p
}

// Location returns the publisher's timezone.
func (p *Publisher) Location() *time.Location {
	return p.location
}

// loaded is a decoded workbook together with the bytes it came from.
type loaded struct {
	workbook  *models.Workbook
	content   []byte
	ext       string
	fromCache bool
}

// Load reads and decodes the workbook behind src without publishing it.
func (p *Publisher) Load(ctx context.Context, src Source) (*models.Workbook, []byte, error) {
	l, err := p.load(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return l.workbook, l.content, nil
}

func (p *Publisher) load(ctx context.Context, src Source) (*loaded, error) {
	l := &loaded{}
	switch {
	case src.Path != "":
		content, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("read workbook: %w", err)
		}
		l.content = content
		l.ext = strings.ToLower(filepath.Ext(src.Path))
		if !workbook.Supported(l.ext) {
			l.ext = ""
		}
	case src.URL != "":
		content, err := p.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			if !errors.Is(err, fetch.ErrFetchFailed) {
				return nil, err
			}
			cached, cacheErr := p.cachedWorkbook(ctx, src)
			if cacheErr != nil {
				p.logger.Debug("No cached workbook to fall back to",
					zap.String("url", src.URL), zap.Error(cacheErr))
				return nil, err
			}
			p.logger.Warn("Download failed, using cached workbook",
				zap.String("url", src.URL),
				zap.String("workbook", cached.Name),
				zap.Time("saved_at", cached.SavedAt),
				zap.Error(err))
			l.content, l.ext, l.fromCache = cached.Content, cached.Ext, true
			wb, err := p.decoder.Decode(l.content, l.ext)
			if err != nil {
				return nil, fmt.Errorf("decode cached workbook: %w", err)
			}
			wb.Name = strings.TrimSpace(src.Name)
			if wb.Name == "" {
				wb.Name = cached.Name
			}
			l.workbook = wb
			return l, nil
		}
		l.content = content
	default:
		return nil, ErrNoSource
	}

	wb, err := p.decoder.Decode(l.content, l.ext)
	if err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}
	wb.Name = p.sourceName(ctx, src)
	l.workbook = wb
	return l, nil
}

// cachedWorkbook finds the bytes behind the newest snapshot of src. Only
// download failures fall back; a source that answered with something other
// than a spreadsheet is reported as is.
func (p *Publisher) cachedWorkbook(ctx context.Context, src Source) (*models.CachedWorkbook, error) {
	if p.storage == nil {
		return nil, errors.New("no storage configured")
	}
	snap, err := p.storage.LatestBySource(ctx, fileid.SourceID(sourceRef(src)))
	if err != nil {
		return nil, err
	}
	if snap.ContentHash == "" {
		return nil, fmt.Errorf("snapshot %s has no cached workbook: %w", snap.ID, storage.ErrNotFound)
	}
	return p.storage.GetWorkbook(ctx, snap.ContentHash)
}

// Publish runs the full pipeline for src. Concurrent calls are serialized so
// the output directory and snapshot history stay consistent. With src.Month set
// every day of the target date's month is written and recorded.
func (p *Publisher) Publish(ctx context.Context, src Source) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	now := start.In(p.location)
	date := src.Date
	if date.IsZero() {
		date = period.Day(now, p.location)
	} else {
		date = period.Day(date, date.Location())
	}

	l, err := p.load(ctx, src)
	if err != nil {
		return nil, err
	}
	wb := l.workbook
	res := &Result{ContentHash: fileid.ContentHash(l.content), FromCache: l.fromCache}

	res.MonthKey = monthKey(wb, now)
	if res.MonthKey != "" && !period.SameMonth(res.MonthKey, date) {
		res.MonthMismatch = true
		p.logger.Warn("Workbook month does not match roster date",
			zap.String("workbook", wb.Name),
			zap.String("month", res.MonthKey),
			zap.String("date", date.Format("2006-01-02")))
	}

	sourceID := fileid.SourceID(sourceRef(src))
	if p.storage != nil && !l.fromCache {
		cached := &models.CachedWorkbook{
			ContentHash: res.ContentHash,
			Name:        wb.Name,
			Ext:         l.ext,
			Content:     l.content,
			SavedAt:     now,
		}
		if err := p.storage.SaveWorkbook(ctx, cached); err != nil {
			p.logger.Warn("Failed to cache workbook", zap.String("workbook", wb.Name), zap.Error(err))
		}
	}

	for _, day := range publishDays(date, src.Month) {
		r, err := p.extractor.Extract(wb, day, now)
		if err != nil {
			return nil, fmt.Errorf("extract roster for %s: %w", day.Format("2006-01-02"), err)
		}
		snap := &models.Snapshot{
			ID:          uuid.New().String(),
			SourceID:    sourceID,
			Source:      wb.Name,
			MonthKey:    res.MonthKey,
			Date:        r.DateKey(),
			ContentHash: res.ContentHash,
			Employees:   r.TotalEmployees(),
			Departments: len(r.Departments),
			Roster:      r,
			CreatedAt:   now,
		}

		var manifest *render.Manifest
		if p.writer != nil {
			meta := render.Meta{
				Source:      wb.Name,
				SourceID:    snap.SourceID,
				SnapshotID:  snap.ID,
				MonthKey:    res.MonthKey,
				GeneratedAt: now,
			}
			manifest, err = p.writer.WriteDay(r, meta)
			if err != nil {
				return nil, fmt.Errorf("write pages: %w", err)
			}
		}
		if p.storage != nil {
			if err := p.storage.SaveSnapshot(ctx, snap); err != nil {
				return nil, fmt.Errorf("save snapshot: %w", err)
			}
		}

		res.Days = append(res.Days, snap.Date)
		if day.Equal(date) {
			res.Roster, res.Snapshot, res.Manifest = r, snap, manifest
		}
	}
	sort.Strings(res.Days)

	if p.storage != nil && p.retention > 0 {
		res.Pruned, err = p.storage.PruneBefore(ctx, now.Add(-p.retention))
		if err != nil {
			p.logger.Warn("Failed to prune snapshots", zap.Error(err))
		}
	}

	r, snap := res.Roster, res.Snapshot
	if p.directory != nil {
		if err := p.directory.Replace(ctx, r); err != nil {
			return nil, fmt.Errorf("refresh directory: %w", err)
		}
	}

	res.Duration = p.now().Sub(start)
	p.logger.Info("Published roster",
		zap.String("snapshot", snap.ID),
		zap.String("source", wb.Name),
		zap.String("date", snap.Date),
		zap.Int("days", len(res.Days)),
		zap.Bool("from_cache", res.FromCache),
		zap.Stringer("active", r.ActiveCategory),
		zap.Int("employees", snap.Employees),
		zap.Int("departments", snap.Departments),
		zap.Int("problems", len(r.Problems)),
		zap.Duration("took", res.Duration))
	return res, nil
}

// publishDays lists the days to publish. The target date comes last so the
// manifest written last describes it.
func publishDays(date time.Time, month bool) []time.Time {
	if !month {
		return []time.Time{date}
	}
	var days []time.Time
	for _, d := range period.MonthDays(date) {
		if !d.Equal(date) {
			days = append(days, d)
		}
	}
	return append(days, date)
}

func sourceRef(src Source) string {
	if src.Path != "" {
		return src.Path
	}
	return src.URL
}

func (p *Publisher) sourceName(ctx context.Context, src Source) string {
	if name := strings.TrimSpace(src.Name); name != "" {
		return name
	}
	if src.NameURL != "" {
		if name := strings.TrimSpace(p.fetcher.FetchText(ctx, src.NameURL)); name != "" {
			return name
		}
		p.logger.Debug("Source name URL gave no usable text", zap.String("url", src.NameURL))
	}
	if src.Path != "" {
		return filepath.Base(src.Path)
	}
	return urlBase(src.URL)
}

// monthKey prefers the workbook name and falls back to the first sheet whose
// name carries a month and year.
func monthKey(wb *models.Workbook, today time.Time) string {
	if key, ok := period.MonthKeyFromFilename(wb.Name, today); ok {
		return key
	}
	for _, s := range wb.Sheets {
		if key, ok := period.MonthFromSheetName(s.Name); ok {
			return key
		}
	}
	return ""
}

func urlBase(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	base := path.Base(strings.TrimRight(raw, "/"))
	if base == "." || base == "/" || base == "" {
		return raw
	}
	return base
}
