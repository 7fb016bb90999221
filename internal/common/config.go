// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Logging     LoggingConfig   `toml:"logging"`
	Auth        AuthConfig      `toml:"auth"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// PortfolioConfig holds tuning constants for portfolio computation.
// These are product policies carried over from the original behavior and are
// deliberately configurable rather than hard-coded.
type PortfolioConfig struct {
	// IntradayCoveragePct is the minimum fraction (0..1) of positions that must
	// have a resolvable price at a timestamp before an intraday point is emitted.
	IntradayCoveragePct float64 `toml:"intraday_coverage_pct"`
	// IntradayWindowDays is the trailing calendar-day window for intraday points.
	IntradayWindowDays int `toml:"intraday_window_days"`
	// ForecastHorizonYears bounds how far ahead dividend forecast entries apply.
	ForecastHorizonYears int `toml:"forecast_horizon_years"`
}

// AuthConfig holds bearer-token authentication configuration.
// When JWTSecret is empty the API runs unauthenticated.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// RateLimitConfig holds API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
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
			Path: "data/folio",
		},
		Portfolio: PortfolioConfig{
			IntradayCoveragePct:  0.8,
			IntradayWindowDays:   5,
			ForecastHorizonYears: 3,
		},
		Auth: AuthConfig{
			TokenExpiry: "24h",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 25,
			Burst:             50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
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

	if err := validatePortfolioConfig(&config.Portfolio); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("FOLIO_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("FOLIO_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// validatePortfolioConfig rejects tuning values that would make the
// computation core emit nonsense (e.g. a coverage gate above 100%).
func validatePortfolioConfig(pc *PortfolioConfig) error {
	if pc.IntradayCoveragePct <= 0 || pc.IntradayCoveragePct > 1 {
		return fmt.Errorf("portfolio.intraday_coverage_pct must be in (0, 1], got %v", pc.IntradayCoveragePct)
	}
	if pc.IntradayWindowDays < 1 {
		return fmt.Errorf("portfolio.intraday_window_days must be >= 1, got %d", pc.IntradayWindowDays)
	}
	if pc.ForecastHorizonYears < 1 {
		return fmt.Errorf("portfolio.forecast_horizon_years must be >= 1, got %d", pc.ForecastHorizonYears)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
