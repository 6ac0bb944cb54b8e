// Package main is the dutyroster CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/hyperjump/dutyroster/internal/cli"
	"github.com/hyperjump/dutyroster/internal/config"
	"github.com/hyperjump/dutyroster/internal/directory"
	"github.com/hyperjump/dutyroster/internal/fetch"
	"github.com/hyperjump/dutyroster/internal/models"
	"github.com/hyperjump/dutyroster/internal/period"
	"github.com/hyperjump/dutyroster/internal/publish"
	"github.com/hyperjump/dutyroster/internal/render"
	"github.com/hyperjump/dutyroster/internal/roster"
	"github.com/hyperjump/dutyroster/internal/server"
	"github.com/hyperjump/dutyroster/internal/storage"
	"github.com/hyperjump/dutyroster/internal/watcher"
	"github.com/hyperjump/dutyroster/internal/workbook"
	"github.com/hyperjump/dutyroster/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/dutyroster/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory, so running from a project checkout uses
// the checkout's config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "generate":
		runGenerate()
	case "serve", "server":
		runServe()
	case "now":
		runNow()
	case "employees", "search":
		runEmployees()
	case "snapshots":
		runSnapshots()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("dutyroster version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, builds the logger and initializes components. Any
// failure exits the process.
func setup(configPath string, debug, cliLogger bool) (*config.Config, string, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	var logger *zap.Logger
	if cliLogger {
		logger, err = utils.NewCLILogger(debugMode)
	} else {
		logger, err = utils.NewLogger(debugMode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, resolved, logger, components
}

func runGenerate() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dateStr := fs.String("date", "", "roster day as YYYY-MM-DD (default: today in the configured timezone)")
	file := fs.String("file", "", "workbook path (overrides source.path)")
	rawURL := fs.String("url", "", "workbook share link (overrides source.url)")
	name := fs.String("name", "", "display name for the source")
	month := fs.Bool("month", false, "write every day of the roster month (default: output.month)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg, _, logger, components := setup(*configPath, *debug, true)
	defer logger.Sync()
	defer components.Close()

	src, err := resolveSource(&cfg.Source, *file, *rawURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (use --file or --url)\n", err)
		os.Exit(1)
	}
	src.Name = *name
	src.Month = *month || cfg.Output.Month
	if src.Date, err = parseDateFlag(*dateStr, cfg.Location()); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --date: %v\n", err)
		os.Exit(1)
	}

	res, err := components.Publisher.Publish(context.Background(), src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generate failed: %v\n", err)
		os.Exit(1)
	}
	if res.MonthMismatch {
		fmt.Fprintf(os.Stderr, "Warning: workbook is for %s but the roster day is %s\n", res.MonthKey, res.Snapshot.Date)
	}
	if res.FromCache {
		fmt.Fprintf(os.Stderr, "Warning: download failed, published the cached copy of %s\n", res.Snapshot.Source)
	}
	if err := cli.WriteRoster(os.Stdout, res.Roster, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputText {
		fmt.Printf("\nWrote %s\n", components.Writer.DayPath(res.Snapshot.Date))
		if len(res.Days) > 1 {
			fmt.Printf("Wrote %d days, %s to %s\n", len(res.Days), res.Days[0], res.Days[len(res.Days)-1])
		}
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger, components := setup(*configPath, *debug, false)
	defer logger.Sync()
	defer components.Close()

	loc := cfg.Location()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("timezone", loc.String()),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	today := period.Today(loc).Format("2006-01-02")
	if snap, err := rebuildDirectory(ctx, components.Storage, components.Directory, today); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Directory rebuild failed", zap.Error(err))
		}
	} else if snap != nil {
		logger.Info("Directory rebuilt", zap.String("snapshot_id", snap.ID), zap.String("date", snap.Date))
	}

	src, srcErr := resolveSource(&cfg.Source, "", "")
	src.Month = cfg.Output.Month
	if srcErr != nil {
		logger.Info("No source configured; publishing only from drop folders")
	}

	if len(cfg.Watch.Directories) > 0 {
		watchSvc := watcher.NewWatcher(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			func(path string) {
				dropped := publish.Source{Path: path, NameURL: cfg.Source.NameURL, Month: cfg.Output.Month}
				if _, err := components.Publisher.Publish(ctx, dropped); err != nil {
					logger.Warn("Publish from drop folder failed", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(cfg.Watch.Debounce),
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
		if !watchSvc.SyncLatest() && srcErr == nil {
			publishOnStart(ctx, components.Publisher, src, logger)
		}
	} else if srcErr == nil {
		publishOnStart(ctx, components.Publisher, src, logger)
	}

	opts := []server.Option{
		server.WithRenderer(components.Renderer),
		server.WithLocation(loc),
		server.WithDiskPaths(append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.IndexPath, cfg.Output.Dir)...),
	}
	if srcErr == nil {
		opts = append(opts, server.WithPublisher(components.Publisher, src))
	}
	srv := server.NewServer(components.Storage, components.Directory, &cfg.Server, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func publishOnStart(ctx context.Context, p *publish.Publisher, src publish.Source, logger *zap.Logger) {
	if _, err := p.Publish(ctx, src); err != nil {
		logger.Warn("Initial publish failed", zap.Error(err))
	}
}

// rebuildDirectory loads the newest roster into idx: today's when one exists,
// else the most recent snapshot. Returns the snapshot used.
func rebuildDirectory(ctx context.Context, store storage.Storage, idx *directory.Index, today string) (*models.Snapshot, error) {
	if idx == nil {
		return nil, nil
	}
	snap, err := store.LatestSnapshot(ctx, today)
	if errors.Is(err, storage.ErrNotFound) {
		list, listErr := store.ListSnapshots(ctx, 0, 1)
		if listErr != nil {
			return nil, listErr
		}
		if len(list) == 0 {
			return nil, err
		}
		snap, err = store.GetSnapshot(ctx, list[0].ID)
	}
	if err != nil {
		return nil, err
	}
	if snap.Roster == nil {
		return snap, nil
	}
	if err := idx.Replace(ctx, snap.Roster); err != nil {
		return nil, fmt.Errorf("replace directory: %w", err)
	}
	return snap, nil
}

func runNow() {
	fs := flag.NewFlagSet("now", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	cfg, _, logger, components := setup(*configPath, false, true)
	defer logger.Sync()
	defer components.Close()

	now := time.Now().In(cfg.Location())
	date := period.Day(now, cfg.Location()).Format("2006-01-02")
	snap, err := components.Storage.LatestSnapshot(context.Background(), date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No roster published for %s; run \"dutyroster generate\" first\n", date)
		} else {
			fmt.Fprintf(os.Stderr, "Load roster failed: %v\n", err)
		}
		os.Exit(1)
	}
	if err := cli.WriteNow(os.Stdout, snap.Roster, roster.CurrentShiftKey(now), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// buildQuery joins all positional args with spaces so multi-word names work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves any flags that appear after the query to the front so that
// flag.Parse sees them. The flag package stops at the first non-flag argument.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

type employeesResponse struct {
	Hits        []models.EmployeeHit   `json:"hits"`
	Suggestions []directory.Suggestion `json:"suggestions,omitempty"`
}

func runEmployees() {
	fs := flag.NewFlagSet("employees", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read storage directly)")
	department := fs.String("department", "", "restrict to one department")
	limit := fs.Int("limit", 10, "number of results")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typos")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	q := models.EmployeeQuery{
		Query:      buildQuery(fs.Args()),
		Department: *department,
		Limit:      *limit,
		Fuzzy:      *fuzzy,
	}
	if err := q.Validate(); err != nil {
		fmt.Println("Usage: dutyroster employees [flags] <name>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var resp *employeesResponse
	if *serverURL != "" {
		resp, err = employeesViaHTTP(*serverURL, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		resp, err = employeesDirect(*configPath, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteHits(os.Stdout, resp.Hits, resp.Suggestions, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// employeesQueryURL builds the GET /api/v1/employees request URL for q.
func employeesQueryURL(serverURL string, q models.EmployeeQuery) string {
	v := url.Values{}
	v.Set("q", q.Query)
	if q.Department != "" {
		v.Set("department", q.Department)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Fuzzy {
		v.Set("fuzzy", "true")
	}
	return strings.TrimRight(serverURL, "/") + "/api/v1/employees?" + v.Encode()
}

func employeesViaHTTP(serverURL string, q models.EmployeeQuery) (*employeesResponse, error) {
	var out employeesResponse
	if err := getJSON(employeesQueryURL(serverURL, q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func employeesDirect(configPath string, q models.EmployeeQuery) (*employeesResponse, error) {
	cfg, _, logger, components := setup(configPath, false, true)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	if n, _ := components.Directory.DocCount(); n == 0 {
		today := period.Today(cfg.Location()).Format("2006-01-02")
		if _, err := rebuildDirectory(ctx, components.Storage, components.Directory, today); err != nil {
			return nil, err
		}
	}
	hits, err := components.Directory.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := &employeesResponse{Hits: hits}
	if len(hits) == 0 {
		resp.Suggestions = components.Directory.Suggest(q.Query, 2, 5)
	}
	return resp, nil
}

func runSnapshots() {
	fs := flag.NewFlagSet("snapshots", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 20, "number of snapshots")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	_, _, logger, components := setup(*configPath, false, true)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	total, err := components.Storage.CountSnapshots(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count snapshots failed: %v\n", err)
		os.Exit(1)
	}
	snaps, err := components.Storage.ListSnapshots(ctx, 0, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List snapshots failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSnapshots(os.Stdout, snaps, total, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Snapshots        int64            `json:"snapshots"`
	Timezone         string           `json:"timezone"`
	Today            string           `json:"today"`
	Latest           *models.Snapshot `json:"latest,omitempty"`
	DirectoryEntries *uint64          `json:"directory_entries,omitempty"`
	DiskUsageBytes   *int64           `json:"disk_usage_bytes,omitempty"`
	PublishEnabled   bool             `json:"publish_enabled"`
	Manifest         *render.Manifest `json:"manifest,omitempty"`
}

func getJSON(target string, v interface{}) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var status statusResponse
	if *serverURL != "" {
		if err := getJSON(strings.TrimRight(*serverURL, "/")+"/api/v1/status", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, logger, components := setup(*configPath, false, true)
		defer logger.Sync()
		defer components.Close()

		ctx := context.Background()
		count, err := components.Storage.CountSnapshots(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count snapshots failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Snapshots: count,
			Timezone:  cfg.Location().String(),
			Today:     period.Today(cfg.Location()).Format("2006-01-02"),
		}
		if latest, err := components.Storage.ListSnapshots(ctx, 0, 1); err == nil && len(latest) > 0 {
			status.Latest = latest[0]
		}
		if m, err := components.Writer.ReadManifest(); err == nil {
			status.Manifest = m
		}
		paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.IndexPath, cfg.Output.Dir)
		if usage, err := storage.DiskUsageBytes(paths...); err == nil {
			status.DiskUsageBytes = &usage
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, &status)
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "snapshots:          %d\n", status.Snapshots)
	fmt.Fprintf(w, "timezone:           %s\n", status.Timezone)
	fmt.Fprintf(w, "today:              %s\n", status.Today)
	if status.Latest != nil {
		fmt.Fprintf(w, "latest:             %s  %s  %d employees\n", status.Latest.Date, status.Latest.Source, status.Latest.Employees)
	}
	if status.Manifest != nil && len(status.Manifest.Dates) > 0 {
		fmt.Fprintf(w, "published_days:     %d (latest %s)\n", len(status.Manifest.Dates), status.Manifest.Latest)
	}
	if status.DirectoryEntries != nil {
		fmt.Fprintf(w, "directory_entries:  %d\n", *status.DirectoryEntries)
	}
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + index + site\n", *status.DiskUsageBytes)
	}
}

// resolveSource picks the workbook to publish. Flag values win over the config;
// a path wins over a URL.
func resolveSource(cfg *config.SourceConfig, file, rawURL string) (publish.Source, error) {
	src := publish.Source{NameURL: cfg.NameURL}
	switch {
	case file != "":
		src.Path = file
	case rawURL != "":
		src.URL = rawURL
	case cfg.Path != "":
		src.Path = cfg.Path
	case cfg.URL != "":
		src.URL = cfg.URL
	default:
		return src, publish.ErrNoSource
	}
	if src.Path != "" {
		if abs, err := filepath.Abs(src.Path); err == nil {
			src.Path = abs
		}
	}
	return src, nil
}

// parseDateFlag parses a YYYY-MM-DD flag in loc. Empty means today and returns
// the zero time.
func parseDateFlag(s string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return period.ParseDate(s, loc)
}

// Components holds initialized services.
type Components struct {
	Storage   storage.Storage
	Directory *directory.Index
	Renderer  *render.Renderer
	Writer    *render.Writer
	Extractor *roster.Extractor
	Publisher *publish.Publisher
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Directory != nil {
		_ = c.Directory.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	idx, err := directory.NewIndex(cfg.Storage.IndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize employee directory: %w", err)
	}

	renderer, err := render.NewRenderer(render.WithTitle(cfg.Title), render.WithBasePath(cfg.Output.BasePath))
	if err != nil {
		_ = store.Close()
		_ = idx.Close()
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}
	writer := render.NewWriter(cfg.Output.Dir, renderer, render.WithLogger(logger))

	weekdays, err := cfg.WeekdayVocabulary()
	if err != nil {
		_ = store.Close()
		_ = idx.Close()
		return nil, err
	}
	mapper := roster.NewMapper(cfg.ShiftCodes)
	for _, code := range mapper.Shadowed() {
		logger.Warn("Shift code is shadowed by a built-in rule and will never match", zap.String("code", code))
	}
	extractor := roster.NewExtractor(mapper,
		roster.WithDepartments(cfg.Departments),
		roster.WithLimits(cfg.Limits()),
		roster.WithWeekdays(weekdays),
		roster.WithLogger(logger),
	)

	publisher := publish.NewPublisher(extractor,
		publish.WithLogger(logger),
		publish.WithStorage(store),
		publish.WithDirectory(idx),
		publish.WithWriter(writer),
		publish.WithLocation(cfg.Location()),
		publish.WithRetention(cfg.Storage.Retention()),
		publish.WithDecoder(workbook.NewDecoder(workbook.WithLogger(logger))),
		publish.WithFetcher(fetch.NewFetcher(fetch.WithTimeout(cfg.Source.Timeout), fetch.WithLogger(logger))),
	)

	return &Components{
		Storage:   store,
		Directory: idx,
		Renderer:  renderer,
		Writer:    writer,
		Extractor: extractor,
		Publisher: publisher,
	}, nil
}

func printUsage() {
	fmt.Println(`dutyroster - Daily duty roster publisher

Usage:
  dutyroster generate [flags]             Extract today's roster and write the site
  dutyroster serve [flags]                Start the HTTP server and drop-folder watcher
  dutyroster now [flags]                  Show who is on the current shift
  dutyroster employees [flags] <name>     Find an employee in the latest roster
  dutyroster snapshots [flags]            List publish history
  dutyroster status [flags]               Show storage and site status
  dutyroster version                      Show version
  dutyroster help                         Show this help

Generate Flags:
  --config string    Config file path (default: /usr/local/etc/dutyroster/config.yaml)
  --date string      Roster day as YYYY-MM-DD (default: today in the configured timezone)
  --file string      Workbook path (overrides source.path)
  --url string       Workbook share link (overrides source.url)
  --name string      Display name for the source
  --month            Write every day of the roster month (default: output.month)
  --output string    Output format: text or json (default: text)
  --debug            Enable debug logging

Serve Flags:
  --config string    Config file path
  --debug            Enable debug logging

Employees Flags:
  --server string      Server URL (default: http://localhost:8080). Use --server "" to read storage directly.
  --department string  Restrict to one department
  --limit int          Number of results (default: 10)
  --fuzzy              Enable fuzzy matching for typos

Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to read storage directly.
  --output string    Output format: text or json (default: text)

Examples:
  dutyroster generate --file "IMP_FEB_2026.xlsx"
  dutyroster generate --date 2026-02-04 --output json
  dutyroster generate --month --url "https://1drv.ms/x/s!..."
  dutyroster serve
  dutyroster now
  dutyroster employees --fuzzy ahmd
  dutyroster status --server ""`)
}
