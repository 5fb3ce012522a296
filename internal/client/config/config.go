package config

import "time"

// Config holds runtime settings for the jobmarket CLI.
//
// Fields:
//   - ServerURL: base URL of the jobmarket HTTP API.
//   - DatabasePath: local SQLite file holding per-visitor data.
//   - RedisURL: optional redis:// URL; when set, recently viewed jobs are kept
//     in Redis instead of the local database.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	ServerURL           string
	DatabasePath        string
	RedisURL            string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "jobmarket.db"
	c.RedisURL = ""
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
