// Package config loads runtime configuration for the Lingopal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-t int      HTTP request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-d string   data directory for local state
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "backend_base_url": "https://api.lingopal.app",
//	  "request_timeout": "10s",
//	  "online_check_interval": "30s",
//	  "data_dir": "/var/lib/lingopal"
//	}
//
// Primary API
//
//   - type Config                     — backend URL, timeouts, data directory
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
