// Package config provides environment-based configuration for the timeline server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the timeline server and renderer.
type Config struct {
	// DataSource is a local path or an http(s) URL of the YAML data file.
	DataSource string

	// Icon assets
	IconsDir string // where the server looks for <name>.png files
	IconsURL string // URL prefix used in rendered background-image rules

	// Static assets (stylesheet, fonts) served under /assets/
	AssetsDir string

	// PageTitle is used for the <title> and heading of the rendered page.
	PageTitle string

	// Server configuration
	WebHost string
	WebPort int

	FetchTimeout     time.Duration
	IconProbeTimeout time.Duration

	// DataCacheTTL caches fetched data between page loads. Zero disables caching.
	DataCacheTTL time.Duration

	// ShowOtherScores renders scores that are neither critic nor user scores
	// in a third group instead of dropping them.
	ShowOtherScores bool

	// ItemClass adds Tailwind utility classes to every timeline item.
	ItemClass string

	// WatchData reloads connected browsers when a local data file changes.
	WatchData bool

	ShutdownTimeout time.Duration

	Log LogConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := LoadWithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataSource) == "" {
		return fmt.Errorf("TIMELINE_DATA is required")
	}
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("WEB_PORT must be between 1 and 65535, got %d", c.WebPort)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.IconProbeTimeout <= 0 {
		return fmt.Errorf("ICON_PROBE_TIMEOUT must be positive")
	}
	if c.DataCacheTTL < 0 {
		return fmt.Errorf("DATA_CACHE_TTL must not be negative")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address of the web server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.WebHost, c.WebPort)
}

// LoadWithDefaults loads configuration with defaults for development.
// It does not validate, useful for testing.
func LoadWithDefaults() *Config {
	return &Config{
		DataSource:       getEnv("TIMELINE_DATA", "data.yaml"),
		IconsDir:         getEnv("TIMELINE_ICONS_DIR", "icons"),
		IconsURL:         getEnv("TIMELINE_ICONS_URL", "icons"),
		AssetsDir:        getEnv("TIMELINE_ASSETS_DIR", "web/assets"),
		PageTitle:        getEnv("PAGE_TITLE", "Timeline"),
		WebHost:          getEnv("WEB_HOST", "0.0.0.0"),
		WebPort:          getIntEnv("WEB_PORT", 3000),
		FetchTimeout:     getDurationEnv("FETCH_TIMEOUT", 10*time.Second),
		IconProbeTimeout: getDurationEnv("ICON_PROBE_TIMEOUT", 2*time.Second),
		DataCacheTTL:     getDurationEnv("DATA_CACHE_TTL", 0),
		ShowOtherScores:  getBoolEnv("SHOW_OTHER_SCORES", false),
		ItemClass:        getEnv("TIMELINE_ITEM_CLASS", ""),
		WatchData:        getBoolEnv("WATCH_DATA", true),
		ShutdownTimeout:  getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
