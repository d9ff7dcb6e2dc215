// Package config loads the console's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all console configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	UI        UIConfig        `yaml:"ui"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig configures the REST client.
type APIConfig struct {
	BaseURL    string            `yaml:"base_url"`
	Timeout    string            `yaml:"timeout"`
	RateLimit  float64           `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst      int               `yaml:"burst"`
	MaxRetries int               `yaml:"max_retries"`
	CacheTTL   string            `yaml:"cache_ttl"`
	CacheSize  int               `yaml:"cache_size"`
	Paths      map[string]string `yaml:"paths,omitempty"` // resource -> URL path
}

// UIConfig configures the terminal console.
type UIConfig struct {
	Locale          string `yaml:"locale"`
	RefreshInterval string `yaml:"refresh_interval"` // 0s disables
}

// LoggingConfig configures the rotating log file.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`  // empty disables logging
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"` // host:port or base URL of an OTLP/HTTP collector
	ServiceName string `yaml:"service_name"`
}

// DefaultDir is the per-user directory holding config and logs.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".forecastconsole"
	}
	return filepath.Join(home, ".forecastconsole")
}

// DefaultPath returns the config file location, honoring
// FORECASTCONSOLE_CONFIG.
func DefaultPath() string {
	if p := os.Getenv("FORECASTCONSOLE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			Timeout:    "10s",
			RateLimit:  20,
			Burst:      10,
			MaxRetries: 3,
			CacheTTL:   "30s",
			CacheSize:  128,
		},
		UI: UIConfig{
			Locale:          "en",
			RefreshInterval: "0s",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(DefaultDir(), "console.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "forecastconsole",
		},
	}
}

// Load reads configuration from a YAML file over the defaults. A missing
// file yields the defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.Logging.File = expandHome(cfg.Logging.File)
	return cfg, nil
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FORECASTCONSOLE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("FORECASTCONSOLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FORECASTCONSOLE_LOCALE"); v != "" {
		c.UI.Locale = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		c.Telemetry.ServiceName = v
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || c.API.BaseURL == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: want http(s)://host[:port]", c.API.BaseURL)
	}

	for name, v := range map[string]string{
		"api.timeout":         c.API.Timeout,
		"api.cache_ttl":       c.API.CacheTTL,
		"ui.refresh_interval": c.UI.RefreshInterval,
	} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return fmt.Errorf("invalid %s %q", name, v)
		}
	}

	switch {
	case c.API.RateLimit < 0:
		return fmt.Errorf("api.rate_limit must not be negative")
	case c.API.Burst < 0:
		return fmt.Errorf("api.burst must not be negative")
	case c.API.MaxRetries < 0:
		return fmt.Errorf("api.max_retries must not be negative")
	case c.API.CacheSize < 0:
		return fmt.Errorf("api.cache_size must not be negative")
	case c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0:
		return fmt.Errorf("logging limits must not be negative")
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	return nil
}

// GetTimeout returns the API request timeout.
func (c *Config) GetTimeout() time.Duration {
	return parseDurationOr(c.API.Timeout, 10*time.Second)
}

// GetCacheTTL returns how long list responses stay cached.
func (c *Config) GetCacheTTL() time.Duration {
	return parseDurationOr(c.API.CacheTTL, 0)
}

// GetRefreshInterval returns the periodic refresh interval; 0 disables it.
func (c *Config) GetRefreshInterval() time.Duration {
	return parseDurationOr(c.UI.RefreshInterval, 0)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
