package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rpggio/storyverse/internal/domain/analytics"
)

// Config defines application configuration.
type Config struct {
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Search    SearchConfig    `yaml:"search"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// GatewayConfig tunes the simulated data-access boundary.
type GatewayConfig struct {
	Latency       time.Duration `yaml:"latency"`
	FailureRate   float64       `yaml:"failure_rate"`
	MaxRetries    uint64        `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Latency  time.Duration `yaml:"latency"`
}

type AnalyticsConfig struct {
	RevenuePerView float64 `yaml:"revenue_per_view"`
	Days           int     `yaml:"days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB: DBConfig{
			Path: "storyverse.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Gateway: GatewayConfig{
			Latency:       500 * time.Millisecond,
			MaxRetries:    3,
			RetryInterval: 50 * time.Millisecond,
		},
		Search: SearchConfig{
			Debounce: 300 * time.Millisecond,
			Latency:  300 * time.Millisecond,
		},
		Analytics: AnalyticsConfig{
			RevenuePerView: 0.002,
			Days:           7,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STORYVERSE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("STORYVERSE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("STORYVERSE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("STORYVERSE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if err := envDuration("STORYVERSE_GATEWAY_LATENCY", &cfg.Gateway.Latency); err != nil {
		return Config{}, err
	}
	if rate := os.Getenv("STORYVERSE_GATEWAY_FAILURE_RATE"); rate != "" {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STORYVERSE_GATEWAY_FAILURE_RATE: %w", err)
		}
		cfg.Gateway.FailureRate = v
	}
	if err := envDuration("STORYVERSE_SEARCH_DEBOUNCE", &cfg.Search.Debounce); err != nil {
		return Config{}, err
	}
	if err := envDuration("STORYVERSE_SEARCH_LATENCY", &cfg.Search.Latency); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects out-of-range settings.
func (c Config) Validate() error {
	if c.Gateway.FailureRate < 0 || c.Gateway.FailureRate > 1 {
		return fmt.Errorf("gateway failure_rate must be within [0,1], got %v", c.Gateway.FailureRate)
	}
	if c.Gateway.Latency < 0 || c.Search.Debounce < 0 || c.Search.Latency < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.Analytics.Days < 0 || c.Analytics.Days > analytics.MaxDays {
		return fmt.Errorf("analytics days must be within [0,%d], got %d", analytics.MaxDays, c.Analytics.Days)
	}
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
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
