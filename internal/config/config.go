// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/numberguess/internal/store"
)

// Config is the full runtime configuration.
type Config struct {
	Addr      string `env:"ADDR" envDefault:"127.0.0.1:5175"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	DataDir      string `env:"DATA_DIR" envDefault:"."`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"./data/numberguess.db"`
	GdataAppName string `env:"GDATA_APP_NAME" envDefault:"numberguess"`

	LeaderboardSize   int    `env:"LEADERBOARD_SIZE" envDefault:"10"`
	DefaultDifficulty string `env:"DEFAULT_DIFFICULTY" envDefault:"medium"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 10
	}
	return cfg, nil
}

// StoreOptions maps the config onto store.Open options.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:      c.StoreBackend,
		DataDir:      c.DataDir,
		SQLitePath:   c.SQLitePath,
		GdataAppName: c.GdataAppName,
	}
}
