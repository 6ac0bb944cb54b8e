// Package config provides configuration loading and structs for the roster service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/dutyroster/internal/models"
	"github.com/hyperjump/dutyroster/internal/roster"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool   `yaml:"debug"`
	Timezone string `yaml:"timezone"`
	Title    string `yaml:"title"`

	Source SourceConfig `yaml:"source"`
	Layout LayoutConfig `yaml:"layout"`
	// Departments lists the sheets to read, in display order. Empty reads every sheet.
	Departments []roster.DepartmentSheet `yaml:"departments"`
	// ShiftCodes replaces the built-in code table when set.
	ShiftCodes map[string]models.ShiftCode `yaml:"shift_codes"`
	// Weekdays replaces the built-in header vocabulary, keyed by English day name.
	Weekdays map[string][]string `yaml:"weekdays"`

	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Watch   WatchConfig   `yaml:"watch"`
}

// SourceConfig says where the roster workbook comes from. Path wins over URL.
type SourceConfig struct {
	Path    string        `yaml:"path"`
	URL     string        `yaml:"url"`
	NameURL string        `yaml:"name_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LayoutConfig bounds the header and employee scans. Zero values use the built-in limits.
type LayoutConfig struct {
	HeaderScanRows   int `yaml:"header_scan_rows"`
	EmployeeScanRows int `yaml:"employee_scan_rows"`
	MinWeekdayHits   int `yaml:"min_weekday_hits"`
	MinDayNumbers    int `yaml:"min_day_numbers"`
}

// OutputConfig holds where pages are written and the URL prefix they are served under.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	BasePath string `yaml:"base_path"`
	// Month writes every day of the roster month on each publish, not just the target day.
	Month bool `yaml:"month"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the snapshot database and the employee index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	// IndexPath is the Bleve directory; empty keeps the index in memory.
	IndexPath string `yaml:"index_path"`
	// RetentionDays prunes older snapshots; negative keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// WatchConfig holds drop folder settings.
type WatchConfig struct {
	Directories []string      `yaml:"directories"`
	Extensions  []string      `yaml:"extensions"`
	Debounce    time.Duration `yaml:"debounce"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Storage.IndexPath != "" {
		cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	}
	cfg.Output.Dir = expandPath(cfg.Output.Dir, configDir)
	if cfg.Source.Path != "" {
		cfg.Source.Path = expandPath(cfg.Source.Path, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	for i, d := range c.Departments {
		if strings.TrimSpace(d.Sheet) == "" {
			return fmt.Errorf("department %d has no sheet", i+1)
		}
	}
	if _, err := c.WeekdayVocabulary(); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Location returns the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Limits converts the layout section into scan limits.
func (c *Config) Limits() roster.Limits {
	return roster.Limits{
		HeaderScanRows:   c.Layout.HeaderScanRows,
		EmployeeScanRows: c.Layout.EmployeeScanRows,
		MinWeekdayHits:   c.Layout.MinWeekdayHits,
		MinDayNumbers:    c.Layout.MinDayNumbers,
	}
}

// WeekdayVocabulary returns the configured weekday tokens, or nil for the built-in set.
func (c *Config) WeekdayVocabulary() (roster.Weekdays, error) {
	if len(c.Weekdays) == 0 {
		return nil, nil
	}
	w := make(roster.Weekdays, len(c.Weekdays))
	for name, tokens := range c.Weekdays {
		day, ok := parseWeekday(name)
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		w[day] = tokens
	}
	return w, nil
}

// Retention returns the snapshot retention window; zero keeps everything.
func (s *StorageConfig) Retention() time.Duration {
	if s.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, true
		}
	}
	return 0, false
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
