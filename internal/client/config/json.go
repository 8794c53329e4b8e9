package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/annagav/garderobe/internal/flagx"
	"github.com/annagav/garderobe/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given either as strings like "15s" or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	DatabaseDSN    string         `json:"database_dsn"`
	CacheDir       string         `json:"cache_dir"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	WatchInterval  timex.Duration `json:"watch_interval"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// No flag means no JSON is loaded. Empty/zero JSON fields leave the current
// value untouched.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("cannot read config file %s: %v", path, err))
	}

	jc := &JsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		panic(fmt.Sprintf("cannot parse config file %s: %v", path, err))
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.CacheDir != "" {
		cfg.CacheDir = jc.CacheDir
	}
	if jc.RequestTimeout != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Std()
	}
	if jc.WatchInterval != 0 {
		cfg.WatchInterval = jc.WatchInterval.Std()
	}
}
