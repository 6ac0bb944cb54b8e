package publish

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperjump/dutyroster/internal/directory"
	"github.com/hyperjump/dutyroster/internal/fetch"
	"github.com/hyperjump/dutyroster/internal/models"
	"github.com/hyperjump/dutyroster/internal/render"
	"github.com/hyperjump/dutyroster/internal/roster"
	"github.com/hyperjump/dutyroster/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var muscat = time.FixedZone("Asia/Muscat", 4*60*60)

var shortDays = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// writeRoster saves a February 2026 officers roster with the given name/code
// pairs for the 3rd.
func writeRoster(t *testing.T, path string, employees [][2]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Officers"); err != nil {
		t.Fatal(err)
	}
	set := func(col, row int, v any) {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue("Officers", cell, v); err != nil {
			t.Fatal(err)
		}
	}
	set(1, 1, "Officers Duty Roster")
	set(2, 2, "EMPLOYEE NAME")
	first := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 28; d++ {
		set(2+d, 3, shortDays[first.AddDate(0, 0, d).Weekday()])
		set(2+d, 4, d+1)
	}
	for i, e := range employees {
		set(2, 5+i, e[0])
		set(4, 5+i, e[1])
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func fixedClock() time.Time {
	return time.Date(2026, time.February, 3, 9, 30, 0, 0, muscat)
}

func newPublisher(t *testing.T, opts ...Option) *Publisher {
	t.Helper()
	extractor := roster.NewExtractor(roster.NewMapper(nil),
		roster.WithDepartments([]roster.DepartmentSheet{{Sheet: "Officers", Name: "Officers"}}))
	base := []Option{WithClock(fixedClock), WithLocation(muscat), WithLogger(zap.NewNop())}
	return NewPublisher(extractor, append(base, opts...)...)
}

func TestPublisher_PublishFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMP_FEB_2026.xlsx")
	writeRoster(t, path, [][2]string{
		{"Ahmed Ali - 1023", "MN06"},
		{"Sara Al Harthy", "AL"},
	})

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "roster.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	defer store.Close()
	idx, err := directory.NewIndex("")
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	defer idx.Close()
	renderer, err := render.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out := filepath.Join(dir, "site")

	p := newPublisher(t,
		WithStorage(store),
		WithDirectory(idx),
		WithWriter(render.NewWriter(out, renderer)))

	ctx := context.Background()
	res, err := p.Publish(ctx, Source{Path: path})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.MonthKey != "2026-02" || res.MonthMismatch {
		t.Errorf("month = %q mismatch=%v", res.MonthKey, res.MonthMismatch)
	}
	if res.Roster.ActiveCategory != models.Morning {
		t.Errorf("ActiveCategory = %v, want Morning", res.Roster.ActiveCategory)
	}
	if res.Snapshot.Employees != 2 || res.Snapshot.Date != "2026-02-03" {
		t.Errorf("unexpected snapshot %+v", res.Snapshot)
	}
	if res.Snapshot.Source != "IMP_FEB_2026.xlsx" {
		t.Errorf("Source = %q", res.Snapshot.Source)
	}

	if _, err := os.Stat(filepath.Join(out, "2026-02-03", "index.html")); err != nil {
		t.Errorf("day page not written: %v", err)
	}
	if res.Manifest == nil || res.Manifest.Latest != "2026-02-03" {
		t.Errorf("unexpected manifest %+v", res.Manifest)
	}

	stored, err := store.LatestSnapshot(ctx, "2026-02-03")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if stored.ID != res.Snapshot.ID || stored.Roster.Department("Officers") == nil {
		t.Errorf("stored snapshot does not match publish result")
	}

	hits, err := idx.Search(ctx, models.EmployeeQuery{Query: "Ahmed", Limit: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Category != models.Morning {
		t.Errorf("unexpected hits %+v", hits)
	}
}

func TestPublisher_MonthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster_MARCH_2026.xlsx")
	writeRoster(t, path, [][2]string{{"Ahmed Ali - 1023", "NN21"}})

	res, err := newPublisher(t).Publish(context.Background(), Source{Path: path})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !res.MonthMismatch || res.MonthKey != "2026-03" {
		t.Errorf("expected month mismatch, got key=%q mismatch=%v", res.MonthKey, res.MonthMismatch)
	}
	if res.Snapshot.Employees != 1 {
		t.Errorf("Employees = %d, want 1", res.Snapshot.Employees)
	}
}

func TestPublisher_ExplicitDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	writeRoster(t, path, [][2]string{{"Ahmed Ali - 1023", "MN06"}})

	date := time.Date(2026, time.February, 4, 0, 0, 0, 0, muscat)
	res, err := newPublisher(t).Publish(context.Background(), Source{Path: path, Date: date})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Snapshot.Date != "2026-02-04" {
		t.Errorf("Date = %q, want 2026-02-04", res.Snapshot.Date)
	}
	if res.Roster.TotalEmployees() != 0 {
		t.Errorf("the 4th has no codes, got %d entries", res.Roster.TotalEmployees())
	}
}

func TestPublisher_PublishURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	writeRoster(t, path, [][2]string{{"Ahmed Ali - 1023", "AN14"}})
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/roster", func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	})
	mux.HandleFunc("/name.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\xef\xbb\xbfOperations Roster\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := newPublisher(t).Publish(context.Background(), Source{
		URL:     srv.URL + "/roster",
		NameURL: srv.URL + "/name.txt",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Snapshot.Source != "Operations Roster" {
		t.Errorf("Source = %q, want Operations Roster", res.Snapshot.Source)
	}
	dept := res.Roster.Department("Officers")
	if dept == nil || len(dept.Buckets[models.Afternoon]) != 1 {
		t.Errorf("unexpected roster %+v", res.Roster)
	}
}

func TestPublisher_MonthMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMP_FEB_2026.xlsx")
	writeRoster(t, path, [][2]string{
		{"Ahmed Ali - 1023", "MN06"},
		{"Sara Al Harthy", "AL"},
	})
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "roster.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	renderer, err := render.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	writer := render.NewWriter(filepath.Join(dir, "site"), renderer)

	ctx := context.Background()
	res, err := newPublisher(t, WithStorage(store), WithWriter(writer)).
		Publish(ctx, Source{Path: path, Month: true})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(res.Days) != 28 || res.Days[0] != "2026-02-01" || res.Days[27] != "2026-02-28" {
		t.Fatalf("Days = %v, want every day of February 2026", res.Days)
	}
	if res.Snapshot.Date != "2026-02-03" || res.Snapshot.Employees != 2 {
		t.Errorf("target snapshot = %+v, want the 3rd with 2 employees", res.Snapshot)
	}

	dates, err := writer.Dates()
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 28 {
		t.Errorf("wrote %d day pages, want 28", len(dates))
	}
	manifest, err := writer.ReadManifest()
	if err != nil {
		t.Fatal(err)
	}
	if manifest.SnapshotID != res.Snapshot.ID || manifest.Employees != 2 {
		t.Errorf("manifest = %+v, want the target day written last", manifest)
	}

	if n, err := store.CountSnapshots(ctx); err != nil || n != 28 {
		t.Errorf("CountSnapshots = %d, %v; want 28", n, err)
	}
	other, err := store.LatestSnapshot(ctx, "2026-02-15")
	if err != nil {
		t.Fatalf("LatestSnapshot(15th): %v", err)
	}
	if other.Employees != 0 || other.ContentHash != res.ContentHash {
		t.Errorf("15th snapshot = %+v", other)
	}
}

func TestPublisher_FallsBackToCachedWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.xlsx")
	writeRoster(t, path, [][2]string{{"Ahmed Ali - 1023", "AN14"}})
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var mode atomic.Int32 // 0 serves the workbook, 1 fails, 2 answers HTML
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch mode.Load() {
		case 0:
			w.Write(content)
		case 1:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		default:
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html><body>Sign in</body></html>"))
		}
	}))
	defer srv.Close()
	src := Source{URL: srv.URL + "/IMP_FEB_2026.xlsx"}
	ctx := context.Background()

	mode.Store(1)
	if _, err := newPublisher(t).Publish(ctx, src); !errors.Is(err, fetch.ErrFetchFailed) {
		t.Fatalf("without storage: err = %v, want ErrFetchFailed", err)
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "roster.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	p := newPublisher(t, WithStorage(store))

	if _, err := p.Publish(ctx, src); !errors.Is(err, fetch.ErrFetchFailed) {
		t.Fatalf("empty cache: err = %v, want ErrFetchFailed", err)
	}

	mode.Store(0)
	first, err := p.Publish(ctx, src)
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if first.FromCache {
		t.Error("first publish should not come from cache")
	}

	mode.Store(1)
	res, err := p.Publish(ctx, src)
	if err != nil {
		t.Fatalf("publish with source down: %v", err)
	}
	if !res.FromCache {
		t.Error("FromCache = false, want true")
	}
	if res.ContentHash != first.ContentHash || res.Snapshot.Source != "IMP_FEB_2026.xlsx" {
		t.Errorf("cached publish = hash %s source %q, want %s IMP_FEB_2026.xlsx",
			res.ContentHash, res.Snapshot.Source, first.ContentHash)
	}
	if dept := res.Roster.Department("Officers"); dept == nil || len(dept.Buckets[models.Afternoon]) != 1 {
		t.Errorf("unexpected cached roster %+v", res.Roster)
	}

	mode.Store(2)
	if _, err := p.Publish(ctx, src); !errors.Is(err, fetch.ErrNotSpreadsheet) {
		t.Errorf("HTML answer: err = %v, want ErrNotSpreadsheet without fallback", err)
	}
}

func TestPublisher_Errors(t *testing.T) {
	p := newPublisher(t)
	ctx := context.Background()

	if _, err := p.Publish(ctx, Source{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}

	notes := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notes, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Publish(ctx, Source{Path: notes}); err == nil {
		t.Error("expected decode error for a text file")
	}

	if _, err := p.Publish(ctx, Source{Path: filepath.Join(t.TempDir(), "missing.xlsx")}); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestURLBase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/files/IMP_FEB_2026.xlsx?download=1", "IMP_FEB_2026.xlsx"},
		{"https://example.com/files/", "files"},
		{"https://1drv.ms/x/s!AbC#frag", "s!AbC"},
	}
	for _, tt := range tests {
		if got := urlBase(tt.in); got != tt.want {
			t.Errorf("urlBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
