// Package config loads process settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's settings. Command-line flags may override any of
// them after Load.
type Config struct {
	Addr          string `env:"VALENTINE_ADDR" envDefault:":8080"`
	DataDir       string `env:"VALENTINE_DATA_DIR" envDefault:"/data"`
	AssetDir      string `env:"VALENTINE_ASSET_DIR" envDefault:"./public"`
	StoreQuota    int64  `env:"VALENTINE_STORE_QUOTA" envDefault:"5242880"`
	IngestWorkers int    `env:"VALENTINE_INGEST_WORKERS" envDefault:"4"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the settings from the environment, with defaults for anything
// unset.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.StoreQuota < 0 {
		return Config{}, fmt.Errorf("VALENTINE_STORE_QUOTA must not be negative, got %d", cfg.StoreQuota)
	}
	return cfg, nil
}
