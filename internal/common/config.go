// Package common provides shared utilities for Papertrade
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Papertrade
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Trading     TradingConfig `toml:"trading"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds price history provider configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// TradingConfig holds the mean-reversion engine parameters.
type TradingConfig struct {
	LookbackDays       int     `toml:"lookback_days"`        // price window length in trading days
	StdDevThreshold    float64 `toml:"stddev_threshold"`     // z-score magnitude that triggers BUY/SELL
	MinConfidence      float64 `toml:"min_confidence"`       // display floor; weaker signals collapse to HOLD
	AutoMinConfidence  float64 `toml:"auto_min_confidence"`  // stricter floor for autonomous execution
	MaxPositionSize    float64 `toml:"max_position_size"`    // fraction of credits committed per BUY
	CheckInterval      string  `toml:"check_interval"`       // scheduler cadence
	FallbackPrice      float64 `toml:"fallback_price"`       // backfill price for legacy holdings missing cost data
	WatchlistOverrides string  `toml:"watchlist_overrides"`  // comma-separated symbols replacing the default watch-list
}

// GetCheckInterval parses and returns the scheduler interval
func (c *TradingConfig) GetCheckInterval() time.Duration {
	d, err := time.ParseDuration(c.CheckInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// Watchlist returns the configured watch-list override, or nil when unset.
func (c *TradingConfig) Watchlist() []string {
	if strings.TrimSpace(c.WatchlistOverrides) == "" {
		return nil
	}
	parts := strings.Split(c.WatchlistOverrides, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000",
			Username:  "root",
			Password:  "root",
			Namespace: "papertrade",
			Database:  "papertrade",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "10s",
			},
		},
		Trading: TradingConfig{
			LookbackDays:      20,
			StdDevThreshold:   1.0,
			MinConfidence:     0.2,
			AutoMinConfidence: 0.7,
			MaxPositionSize:   0.1,
			CheckInterval:     "5m",
			FallbackPrice:     100.0,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "./logs/papertrade.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PAPERTRADE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PAPERTRADE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PAPERTRADE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PAPERTRADE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("PAPERTRADE_DB_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if user := os.Getenv("PAPERTRADE_DB_USERNAME"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("PAPERTRADE_DB_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
	if key := os.Getenv("PAPERTRADE_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if iv := os.Getenv("PAPERTRADE_CHECK_INTERVAL"); iv != "" {
		if _, err := time.ParseDuration(iv); err == nil {
			config.Trading.CheckInterval = iv
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
