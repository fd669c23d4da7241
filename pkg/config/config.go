package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/SafeField/FieldGate/pkg/threat"
)

// Config is the engine tuning loaded from fieldgate.yaml and the
// FIELDGATE_* environment. Every value has a working default; a missing
// config file is not an error.
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Scoring  threat.Params `mapstructure:"scoring"`
	Events   EventsConfig  `mapstructure:"events"`
	// Fields holds per-field-type override options (max_length,
	// check_injection, ...) keyed by field type name, applied when a call
	// passes no overrides of its own.
	Fields map[string]map[string]interface{} `mapstructure:"fields"`
}

// EventsConfig selects the security-event sink. Exporter is "log",
// "kafka" or "none".
type EventsConfig struct {
	Exporter string                 `mapstructure:"exporter"`
	Workers  int                    `mapstructure:"workers"`
	Settings map[string]interface{} `mapstructure:"settings"`
}

// Load reads fieldgate.yaml from the working directory or /etc/fieldgate,
// overlaid with FIELDGATE_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("fieldgate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/fieldgate")
	v.SetEnvPrefix("FIELDGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := threat.DefaultParams()
	v.SetDefault("log_level", "info")
	v.SetDefault("scoring.critical_weight", defaults.CriticalWeight)
	v.SetDefault("scoring.high_weight", defaults.HighWeight)
	v.SetDefault("scoring.medium_weight", defaults.MediumWeight)
	v.SetDefault("scoring.low_weight", defaults.LowWeight)
	v.SetDefault("scoring.safe_threshold", defaults.SafeThreshold)
	v.SetDefault("events.exporter", "log")
	v.SetDefault("events.workers", 2)
}

func (c *Config) validate() error {
	if c.Scoring.SafeThreshold < 0 || c.Scoring.SafeThreshold > 100 {
		return fmt.Errorf("scoring.safe_threshold must be in [0,100], got %d", c.Scoring.SafeThreshold)
	}
	switch c.Events.Exporter {
	case "log", "kafka", "none":
	default:
		return fmt.Errorf("unknown events.exporter: %q", c.Events.Exporter)
	}
	return nil
}
