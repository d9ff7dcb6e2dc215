package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FORECASTCONSOLE_API_URL", "FORECASTCONSOLE_LOG_LEVEL", "FORECASTCONSOLE_LOCALE",
		"FORECASTCONSOLE_CONFIG", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.GetTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetCacheTTL())
	assert.Equal(t, time.Duration(0), cfg.GetRefreshInterval())
	assert.Equal(t, "en", cfg.UI.Locale)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API, cfg.API)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://forecasts.example.com"
	cfg.API.Paths = map[string]string{"crypto-queries": "queries"}
	cfg.UI.Locale = "de"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://forecasts.example.com", loaded.API.BaseURL)
	assert.Equal(t, "queries", loaded.API.Paths["crypto-queries"])
	assert.Equal(t, "de", loaded.UI.Locale)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  refresh_interval: 1m\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.GetRefreshInterval())
	assert.Equal(t, 3, cfg.API.MaxRetries)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORECASTCONSOLE_API_URL", "http://api:9000")
	t.Setenv("FORECASTCONSOLE_LOG_LEVEL", "debug")
	t.Setenv("FORECASTCONSOLE_LOCALE", "fr")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SERVICE_NAME", "console-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://api:9000", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "fr", cfg.UI.Locale)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, "console-test", cfg.Telemetry.ServiceName)
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv("FORECASTCONSOLE_CONFIG", "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", DefaultPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"no scheme", func(c *Config) { c.API.BaseURL = "localhost:8080" }},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }},
		{"negative refresh", func(c *Config) { c.UI.RefreshInterval = "-1s" }},
		{"negative rate", func(c *Config) { c.API.RateLimit = -1 }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -2 }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
		{"telemetry without endpoint", func(c *Config) { c.Telemetry.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs/console.log"), expandHome("~/logs/console.log"))
	assert.Equal(t, "/var/log/c.log", expandHome("/var/log/c.log"))
}
