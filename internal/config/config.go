package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration. Values come from an optional YAML
// file (REGATTA_CONFIG_PATH) overridden by REGATTA_* environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Email    EmailConfig    `yaml:"email"`
	Practice PracticeConfig `yaml:"practice"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Env  string `yaml:"env"` // development or production
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type EmailConfig struct {
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
}

// PracticeConfig carries the session-wide practice defaults. Per-event
// windows in the database take precedence; these bound the wizard when an
// event does not configure its own.
type PracticeConfig struct {
	MinHoursPerTeam int           `yaml:"min_hours_per_team"`
	MaxDatesPerTeam int           `yaml:"max_dates_per_team"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	QuotaBytes      int           `yaml:"quota_bytes"`
}

// Load reads configuration from an optional YAML file and environment
// variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Addr: ":8080",
			Env:  "development",
		},
		DB: DBConfig{
			Path: "regatta.db",
		},
		Email: EmailConfig{
			From:    "Regatta Series <noreply@regattaseries.example>",
			ReplyTo: "office@regattaseries.example",
		},
		Practice: PracticeConfig{
			MinHoursPerTeam: 12,
			MaxDatesPerTeam: 3,
			SessionTTL:      24 * time.Hour,
		},
	}

	if path := os.Getenv("REGATTA_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if addr := os.Getenv("REGATTA_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if env := os.Getenv("REGATTA_ENV"); env != "" {
		cfg.Server.Env = env
	}
	if dbPath := os.Getenv("REGATTA_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if key := os.Getenv("REGATTA_RESEND_KEY"); key != "" {
		cfg.Email.ResendKey = key
	}
	if from := os.Getenv("REGATTA_RESEND_FROM"); from != "" {
		cfg.Email.From = from
	}
	if replyTo := os.Getenv("REGATTA_REPLY_TO"); replyTo != "" {
		cfg.Email.ReplyTo = replyTo
	}
	if v := os.Getenv("REGATTA_MIN_PRACTICE_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid REGATTA_MIN_PRACTICE_HOURS: %q", v)
		}
		cfg.Practice.MinHoursPerTeam = n
	}
	if v := os.Getenv("REGATTA_MAX_PRACTICE_DATES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid REGATTA_MAX_PRACTICE_DATES: %q", v)
		}
		cfg.Practice.MaxDatesPerTeam = n
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production hardening.
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
