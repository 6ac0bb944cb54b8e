package config

import (
	"time"

	"github.com/hyperjump/dutyroster/internal/workbook"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Muscat"
	}
	if cfg.Title == "" {
		cfg.Title = "Duty Roster"
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 90 * time.Second
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/dutyroster/data/db/roster.db"
	}
	if cfg.Storage.RetentionDays == 0 {
		cfg.Storage.RetentionDays = 90
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "/usr/local/var/dutyroster/site"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = workbook.Extensions()
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 2 * time.Second
	}
}
