package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/folio", cfg.Storage.Path)
	assert.InDelta(t, 0.8, cfg.Portfolio.IntradayCoveragePct, 1e-9)
	assert.Equal(t, 5, cfg.Portfolio.IntradayWindowDays)
	assert.Equal(t, 3, cfg.Portfolio.ForecastHorizonYears)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	content := `
environment = "production"

[server]
port = 9090

[portfolio]
intraday_coverage_pct = 0.9
intraday_window_days = 7
forecast_horizon_years = 2

[logging]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.9, cfg.Portfolio.IntradayCoveragePct, 1e-9)
	assert.Equal(t, 7, cfg.Portfolio.IntradayWindowDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Unset sections keep defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfigLaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")
	require.NoError(t, os.WriteFile(base, []byte("[server]\nport = 9000\n"), 0644))
	require.NoError(t, os.WriteFile(local, []byte("[server]\nport = 9001\n"), 0644))

	cfg, err := LoadConfig(base, local)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_ENV", "staging")
	t.Setenv("FOLIO_PORT", "7070")
	t.Setenv("FOLIO_LOG_LEVEL", "warn")
	t.Setenv("FOLIO_DATA_PATH", "/tmp/folio-data")
	t.Setenv("FOLIO_AUTH_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/folio-data", cfg.Storage.Path)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadConfigInvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("FOLIO_PORT", "not-a-port")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfigRejectsBadPortfolioTuning(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"coverage above one", "[portfolio]\nintraday_coverage_pct = 1.5\n"},
		{"coverage zero", "[portfolio]\nintraday_coverage_pct = 0.0\n"},
		{"window below one", "[portfolio]\nintraday_window_days = 0\n"},
		{"horizon below one", "[portfolio]\nforecast_horizon_years = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestAuthTokenExpiry(t *testing.T) {
	auth := AuthConfig{TokenExpiry: "2h"}
	assert.Equal(t, "2h0m0s", auth.GetTokenExpiry().String())

	auth.TokenExpiry = "bogus"
	assert.Equal(t, "24h0m0s", auth.GetTokenExpiry().String())
}
