// Package config loads the askld runtime configuration from the
// environment (optionally seeded from a .env file), in the defaulted-field
// style the teacher's own config loader uses.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds askld's runtime configuration.
type Config struct {
	// DSN selects the oracle's storage backend: a sqlite file path, a
	// libsql/Turso URL, or a postgres:// DSN.
	DSN string
	// QueryTimeout bounds one query's wall-clock budget (spec §5, default
	// 1 second).
	QueryTimeout time.Duration
	// ListenAddr is read from ASKL_LISTEN_ADDR; no command in this
	// repository listens on it.
	ListenAddr string
	// Debug enables verbose GORM query logging.
	Debug bool
}

// Load reads a .env file if present (missing files are not an error, same
// as godotenv.Load's usual callers) and then builds a Config from
// ASKL_-prefixed environment variables, applying defaults for anything
// unset.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DSN:          os.Getenv("ASKL_DSN"),
		QueryTimeout: 1 * time.Second,
		ListenAddr:   ":8080",
		Debug:        false,
	}

	if cfg.DSN == "" {
		cfg.DSN = "askl.db"
	}

	if addr := os.Getenv("ASKL_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if timeoutStr := os.Getenv("ASKL_QUERY_TIMEOUT_MS"); timeoutStr != "" {
		if ms, err := strconv.Atoi(timeoutStr); err == nil && ms > 0 {
			cfg.QueryTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	if debugStr := os.Getenv("ASKL_DEBUG"); debugStr != "" {
		if debug, err := strconv.ParseBool(debugStr); err == nil {
			cfg.Debug = debug
		}
	}

	return cfg
}
