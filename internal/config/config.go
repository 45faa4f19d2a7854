package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/deadman.db"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":3000"` // check-in endpoint, healthz, metrics
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error

	// DefaultIntervalMinutes is the allowed silence interval assigned to
	// newly registered subjects. Not user-mutable after registration.
	DefaultIntervalMinutes int `envconfig:"DEFAULT_INTERVAL_MINUTES" default:"1440"`

	// SweepIntervalSeconds is the fixed period between overdue sweeps.
	SweepIntervalSeconds int `envconfig:"SWEEP_INTERVAL_SECONDS" default:"60"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
