// Package config loads daemon and CLI settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the settings shared by the CLI and the daemon. All fields have
// working defaults so a plain `spendlink` invocation needs no environment.
type Config struct {
	// StateDir is where tokens.json and prefs.json live.
	StateDir string
	// ListenAddr is the daemon's HTTP bind address.
	ListenAddr string
	// DaemonURL is where CLI commands reach a running daemon.
	DaemonURL string
	// APITimeout bounds each spend.cloud API request.
	APITimeout time.Duration
}

const (
	defaultListenAddr = "127.0.0.1:7407"
	defaultAPITimeout = 30 * time.Second
)

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr: getEnv("SPENDLINK_LISTEN_ADDR", defaultListenAddr),
		APITimeout: defaultAPITimeout,
	}

	cfg.StateDir = os.Getenv("SPENDLINK_STATE_DIR")
	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.StateDir = filepath.Join(base, "spendlink")
	}

	cfg.DaemonURL = getEnv("SPENDLINK_DAEMON_URL", "http://"+cfg.ListenAddr)

	if raw := os.Getenv("SPENDLINK_API_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SPENDLINK_API_TIMEOUT %q: %w", raw, err)
		}
		cfg.APITimeout = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
