// Package config provides configuration management for the portfolio tracker.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Market      MarketConfig  `mapstructure:"market"`
	Storage     StorageConfig `mapstructure:"storage"`
	Insight     InsightConfig `mapstructure:"insight"`
	UI          UIConfig      `mapstructure:"ui"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// MarketConfig holds market-data configuration.
type MarketConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Currency        string        `mapstructure:"currency"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "file", "sqlite"
	Path    string `mapstructure:"path"`    // Defaults to the config dir
}

// InsightConfig holds AI analysis configuration.
type InsightConfig struct {
	Model string `mapstructure:"model"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// Credentials holds API credentials.
type Credentials struct {
	CoinGecko CoinGeckoCredentials `mapstructure:"coingecko"`
	OpenAI    OpenAICredentials    `mapstructure:"openai"`
}

// CoinGeckoCredentials holds the market-data API key (optional for the
// public endpoint).
type CoinGeckoCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/cryptofolio"
	}
	return filepath.Join(home, ".config", "cryptofolio")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = configDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("market.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("market.currency", "usd")
	v.SetDefault("market.refresh_interval", "60s")
	v.SetDefault("market.request_timeout", "10s")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("insight.model", "gpt-4o-mini")
	v.SetDefault("ui.color_enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.Credentials.CoinGecko.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("CRYPTOFOLIO_REFRESH_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Market.RefreshInterval = time.Duration(secs) * time.Second
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Storage.Backend != "file" && c.Storage.Backend != "sqlite" {
		return fmt.Errorf("invalid storage backend: %s (must be 'file' or 'sqlite')", c.Storage.Backend)
	}
	if c.Market.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if c.Market.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.Market.Currency != "usd" {
		return fmt.Errorf("unsupported currency: %s (only 'usd' is supported)", c.Market.Currency)
	}
	return nil
}

// HasInsight reports whether the insight service is configured.
func (c *Config) HasInsight() bool {
	return c.Credentials.OpenAI.APIKey != ""
}
