package feedfilter

import (
	"github.com/hazyhaar/leanbrew/feedfilter/internal/config"
)

// Config is the top-level leanbrew configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// FeedConfig tunes the filtering pipeline.
type FeedConfig = config.FeedConfig

// StoreConfig locates the toggle store.
type StoreConfig = config.StoreConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// PanelConfig controls the HTTP toggle panel.
type PanelConfig = config.PanelConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}
