package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Features  FeatureConfig   `mapstructure:"features"`
	// Organisers holds per-organiser scrape politeness/timeout settings, keyed
	// by organiser tag (e.g. "hopasports", "evochip").
	Organisers map[string]OrganiserConfig `mapstructure:"organisers"`
}

// ServerConfig is the HTTP trigger surface configuration.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"` // debug/release/test
	AdminKey string `mapstructure:"admin_key"` // pre-shared header key for /scrape, /monitor
}

// PostgresConfig is the relational persistence configuration.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig drives the two periodic jobs (monitor pass, retry drain).
type SchedulerConfig struct {
	MonitorIntervalMinutes int `mapstructure:"monitor_interval_minutes"`
	RetryIntervalMinutes   int `mapstructure:"retry_interval_minutes"`
}

// NotifierConfig carries credentials for the external (out-of-scope) notifier
// transport; only the webhook target is read here, never sent to directly.
type NotifierConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Enabled    bool   `mapstructure:"enabled"`
}

// StorageConfig selects the ancillary-blob storage mode; this repo never
// switches on it itself (object-store/filesystem switching is out of scope)
// but it is read once so downstream collaborators can branch on it.
type StorageConfig struct {
	Mode string `mapstructure:"mode"` // db/object-store/filesystem
}

// FeatureConfig is the feature-flag block.
type FeatureConfig struct {
	BackgroundMonitoring bool `mapstructure:"background_monitoring"`
}

// OrganiserConfig is a single organiser's scrape politeness/timeout knobs.
type OrganiserConfig struct {
	UserAgent       string `mapstructure:"user_agent"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	PolitenessMs    int    `mapstructure:"politeness_ms"` // min delay between page requests
	HeadlessAllowed bool   `mapstructure:"headless_allowed"`
	Proxy           string `mapstructure:"proxy"`
}

// LoadConfig reads config.yaml from ./config, then lets environment
// variables (via .env if present) override sensitive fields.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // optional; ignored if absent

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// overrideFromEnv lets environment variables win over config.yaml for
// secrets that should never be committed.
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("ADMIN_KEY"); v != "" {
		cfg.Server.AdminKey = v
	}
	if v := os.Getenv("NOTIFIER_WEBHOOK_URL"); v != "" {
		cfg.Notifier.WebhookURL = v
	}
}
