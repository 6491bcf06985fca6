package config

// Config is the top-level shelfmate configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// SearchConfig tunes the catalog search client.
type SearchConfig struct {
	RatePerSec int `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// DefaultsConfig holds default values for listings and session storage.
type DefaultsConfig struct {
	PageLimit   int    `mapstructure:"page_limit" yaml:"page_limit"`
	SessionPath string `mapstructure:"session_path" yaml:"session_path"`
}
