// Package config handles configuration for the NexusCare client: defaults,
// optional JSON file, environment variables, and command-line flags, each
// stage overriding the previous one.
package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the NexusCare CLI.
//
// Fields:
//   - BaseURL: root of the backend REST API, without a trailing slash.
//   - RequestTimeout: default per-request timeout for backend calls.
//   - DatabaseFile: path of the local SQLite file holding session credentials.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DatabaseFile   string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8000/api"
	c.RequestTimeout = 30 * time.Second
	c.DatabaseFile = "session.db"
}

// LoadConfig constructs a Config by applying defaults, then overlaying
// values from JSON (if a -c/-config file is given), the environment, and
// finally command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}
