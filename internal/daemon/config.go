// Package daemon manages the LifeQuest daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/lifequest/lifequest/internal/app/engagement"
)

// Config holds all daemon configuration.
type Config struct {
	API           APIConfig                     `toml:"api"`
	Engine        EngineConfig                  `toml:"engine"`
	Notifications engagement.NotificationPolicy `toml:"notifications"`
	Logging       LoggingConfig                 `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" env:"LIFEQUEST_API_HOST"`
	Port        int      `toml:"port" env:"LIFEQUEST_API_PORT"`
	CORSOrigins []string `toml:"cors_origins" env:"LIFEQUEST_CORS_ORIGINS" envSeparator:","`
	Metrics     bool     `toml:"metrics" env:"LIFEQUEST_METRICS"`
}

// EngineConfig controls the progression engine.
type EngineConfig struct {
	// Profile is the snapshot key; one key per local user.
	Profile      string                   `toml:"profile" env:"LIFEQUEST_PROFILE"`
	Timezone     string                   `toml:"timezone" env:"LIFEQUEST_TIMEZONE"`
	RefillPeriod string                   `toml:"refill_period" env:"LIFEQUEST_REFILL_PERIOD"`
	History      engagement.HistoryLimits `toml:"history"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level" env:"LIFEQUEST_LOG_LEVEL"`
	File  string `toml:"file" env:"LIFEQUEST_LOG_FILE"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7420,
			CORSOrigins: []string{"*"},
			Metrics:     true,
		},
		Engine: EngineConfig{
			Profile:      "default",
			Timezone:     "Local",
			RefillPeriod: engagement.RefillPeriod.String(),
			History:      engagement.DefaultHistoryLimits(),
		},
		Notifications: engagement.NotificationPolicy{
			MaxPerDay: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads config from ~/.lifequest/config.toml, falling back to
// defaults, then applies LIFEQUEST_* environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.lifequest/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Engine.Profile == "" {
		return fmt.Errorf("engine.profile must not be empty")
	}
	if _, err := c.Engine.Location(); err != nil {
		return err
	}
	if _, err := c.Engine.Refill(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone. "Local" or empty uses the host zone.
func (c EngineConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("engine.timezone: %w", err)
	}
	return loc, nil
}

// Refill parses the AI token refill period.
func (c EngineConfig) Refill() (time.Duration, error) {
	if c.RefillPeriod == "" {
		return engagement.RefillPeriod, nil
	}
	d, err := time.ParseDuration(c.RefillPeriod)
	if err != nil {
		return 0, fmt.Errorf("engine.refill_period: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("engine.refill_period must be positive, got %s", d)
	}
	return d, nil
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(lifequestHome(), "config.toml")
}

// lifequestHome returns the LifeQuest data directory.
func lifequestHome() string {
	if env := os.Getenv("LIFEQUEST_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lifequest")
}

// Home is exported for use by other packages.
func Home() string {
	return lifequestHome()
}
