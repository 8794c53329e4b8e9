// Package config loads runtime settings for the wardrobe client. Values are
// layered: built-in defaults, then an optional JSON file (-c/-config), then
// command-line flags; later sources override earlier ones.
package config

import "time"

// Config holds runtime settings for the wardrobe client.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP API.
//   - DatabaseDSN: path/DSN of the local SQLite database.
//   - CacheDir: directory for downloaded images and temporary upload files.
//   - RequestTimeout: per-request HTTP timeout.
//   - WatchInterval: floor between re-evaluations of observed queries.
type Config struct {
	ServerBaseURL  string
	DatabaseDSN    string
	CacheDir       string
	RequestTimeout time.Duration
	WatchInterval  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "wardrobe.db"
	c.CacheDir = "cache"
	c.RequestTimeout = 15 * time.Second
	c.WatchInterval = 500 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
