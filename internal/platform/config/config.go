// Package config loads server configuration from the environment.
// A local .env file is honored when present; real environment variables win.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the arena server reads at startup.
type Config struct {
	ListenAddr string `env:"ARENA_LISTEN_ADDR" envDefault:":8080"`
	DBPath     string `env:"ARENA_DB_PATH" envDefault:"arena.db"`

	// Session defaults applied when a start request omits them.
	TimedDurationSec int `env:"ARENA_TIMED_DURATION_SEC" envDefault:"120"`
	StartTier        int `env:"ARENA_START_TIER" envDefault:"1"`

	// Transport tuning.
	ClientSendBuffer  int `env:"ARENA_CLIENT_SEND_BUFFER" envDefault:"64"`
	MaxActionsPerSec  int `env:"ARENA_MAX_ACTIONS_PER_SEC" envDefault:"20"`
	SnapshotPeriodSec int `env:"ARENA_SNAPSHOT_PERIOD_SEC" envDefault:"5"`
}

// Load reads the .env file (best effort) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StartTier < 1 || cfg.StartTier > 5 {
		return Config{}, fmt.Errorf("ARENA_START_TIER must be 1-5, got %d", cfg.StartTier)
	}
	return cfg, nil
}
