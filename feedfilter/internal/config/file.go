// Package config handles leanbrew configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Feed URLs watched by default.
var DefaultFeedURLs = []string{"https://twitter.com/home", "https://x.com/home"}

// Config is the top-level leanbrew configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Feed    FeedConfig    `yaml:"feed"`
	Store   StoreConfig   `yaml:"store"`
	Sinks   []SinkConfig  `yaml:"sinks"`
	Panel   PanelConfig   `yaml:"panel"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string   `yaml:"remote"`
	Stealth          string   `yaml:"stealth"` // headless | headful
	XvfbDisplay      string   `yaml:"xvfb_display"`
	UserDataDir      string   `yaml:"user_data_dir"`
	ResourceBlocking []string `yaml:"resource_blocking"`
	StartURL         string   `yaml:"start_url"`
}

// FeedConfig tunes the filtering pipeline.
type FeedConfig struct {
	URLs          []string      `yaml:"urls"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Debounce      time.Duration `yaml:"debounce"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	BatchLimit    int           `yaml:"batch_limit"`
	MaxAge        time.Duration `yaml:"max_age"`
	MaxOneLiner   int           `yaml:"max_one_liner"`
}

// StoreConfig locates the toggle store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// PanelConfig controls the HTTP toggle panel. An empty Addr disables it.
type PanelConfig struct {
	Addr string `yaml:"addr"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.StartURL == "" {
		c.Browser.StartURL = "https://x.com/home"
	}
	if len(c.Feed.URLs) == 0 {
		c.Feed.URLs = append([]string(nil), DefaultFeedURLs...)
	}
	if c.Feed.PollInterval <= 0 {
		c.Feed.PollInterval = 500 * time.Millisecond
	}
	if c.Feed.Debounce <= 0 {
		c.Feed.Debounce = 250 * time.Millisecond
	}
	if c.Feed.RetryInterval <= 0 {
		c.Feed.RetryInterval = time.Second
	}
	if c.Feed.BatchLimit <= 0 {
		c.Feed.BatchLimit = 20
	}
	if c.Feed.MaxAge <= 0 {
		c.Feed.MaxAge = 24 * time.Hour
	}
	if c.Feed.MaxOneLiner <= 0 {
		c.Feed.MaxOneLiner = 70
	}
	if c.Store.Path == "" {
		c.Store.Path = "leanbrew.db"
	}
	if len(c.Sinks) == 0 {
		c.Sinks = []SinkConfig{{Type: "stdout"}}
	}
}

func (c *Config) validate() error {
	switch c.Browser.Stealth {
	case "headless", "headful":
	default:
		return fmt.Errorf("config: browser.stealth %q: want headless or headful", c.Browser.Stealth)
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: sinks[%d]: webhook needs url", i)
			}
		default:
			return fmt.Errorf("config: sinks[%d]: unknown type %q", i, s.Type)
		}
	}
	return nil
}
