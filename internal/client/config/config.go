package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Lingopal client.
//
// Fields:
//   - BackendBaseURL: base URL of the backend REST API.
//   - RequestTimeout: per-request HTTP timeout for API calls.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - DataDir: directory for local state (token store, settings database).
//
// Units: RequestTimeout and OnlineCheckInterval are time.Durations.
type Config struct {
	BackendBaseURL      string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	DataDir             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendBaseURL = "https://api.lingopal.app"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
	c.DataDir = defaultDataDir()
}

// defaultDataDir resolves the per-user state directory, falling back to a
// dotted directory in the working directory when the platform offers no
// config home.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".lingopal"
	}
	return filepath.Join(base, "lingopal")
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
