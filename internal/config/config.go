package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abelbrown/ramah/internal/fetch"
	"github.com/abelbrown/ramah/internal/render"
	"github.com/abelbrown/ramah/internal/scroll"
)

// Config is the persistent application configuration
type Config struct {
	Feed FeedConfig `json:"feed"`
	UI   UIConfig   `json:"ui"`
}

// FeedConfig controls where the feed comes from and how it is paged.
type FeedConfig struct {
	Endpoint       string `json:"endpoint"`
	TimeoutSeconds int    `json:"timeout_seconds"` // 0 = no client timeout
	BatchSize      int    `json:"batch_size"`
	LeadMargin     int    `json:"lead_margin"`    // items left below the viewport before loading more
	BatchDelayMs   int    `json:"batch_delay_ms"` // visual delay before a scroll batch appears
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme   string `json:"theme"`    // "", "light" or "dark"; empty follows the saved preference
	SiteURL string `json:"site_url"` // page embedded by the embed snippet
	Debug   bool   `json:"debug"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			Endpoint:     fetch.DefaultEndpoint,
			BatchSize:    render.DefaultBatchSize,
			LeadMargin:   scroll.DefaultLeadMargin,
			BatchDelayMs: 150,
		},
		UI: UIConfig{
			SiteURL: "https://lewdry.github.io/ramah/",
		},
	}
}

// Dir returns ~/.ramah, the home of config, logs and preferences.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ramah")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from path (ConfigPath when empty), or returns defaults
// when the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	cfg.AutoPopulateFromEnv()
	return cfg, nil
}

// Save writes config to path (ConfigPath when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AutoPopulateFromEnv applies RAMAH_* environment overrides.
func (c *Config) AutoPopulateFromEnv() {
	if v := os.Getenv("RAMAH_ENDPOINT"); v != "" {
		c.Feed.Endpoint = v
	}
	if v := os.Getenv("RAMAH_THEME"); v == "light" || v == "dark" {
		c.UI.Theme = v
	}
	if v := os.Getenv("RAMAH_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Feed.BatchSize = n
		}
	}
}

// Timeout returns the HTTP client timeout. Zero leaves it to the transport.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// BatchDelay returns the visual delay before a scroll batch is shown.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Feed.BatchDelayMs) * time.Millisecond
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Feed.Endpoint == "" {
		c.Feed.Endpoint = def.Feed.Endpoint
	}
	if c.Feed.TimeoutSeconds < 0 {
		c.Feed.TimeoutSeconds = def.Feed.TimeoutSeconds
	}
	if c.Feed.BatchSize <= 0 {
		c.Feed.BatchSize = def.Feed.BatchSize
	}
	if c.Feed.LeadMargin < 0 {
		c.Feed.LeadMargin = def.Feed.LeadMargin
	}
	if c.Feed.BatchDelayMs < 0 {
		c.Feed.BatchDelayMs = def.Feed.BatchDelayMs
	}
	if c.UI.Theme != "light" && c.UI.Theme != "dark" {
		c.UI.Theme = ""
	}
	if c.UI.SiteURL == "" {
		c.UI.SiteURL = def.UI.SiteURL
	}
}
