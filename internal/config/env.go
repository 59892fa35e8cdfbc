package config

import (
	"os"
	"time"
)

// Environment variables recognized by the client.
const (
	EnvAPIURL  = "NEXUSCARE_API_URL"
	EnvTimeout = "NEXUSCARE_TIMEOUT"
	EnvDB      = "NEXUSCARE_DB"
)

// parseEnv overlays cfg with values from the environment. Unset or empty
// variables leave the current value untouched; an unparsable timeout is
// ignored rather than fatal.
func parseEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DatabaseFile = v
	}
}
