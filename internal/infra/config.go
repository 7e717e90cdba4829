package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"commodity_go/internal/domain"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. Sensitive or deployment-specific
// values can be overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		BaseURL    string `yaml:"base_url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"api"`

	Market struct {
		PollIntervalMS int `yaml:"poll_interval_ms"`
	} `yaml:"market"`

	Storage struct {
		Path string `yaml:"path"` // empty = OS user config dir
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"` // empty = "logs" under the working directory
	} `yaml:"logging"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	var cfg Config
	cfg.App.Name = "Commodity Go"
	cfg.API.BaseURL = "http://localhost:5000"
	cfg.API.TimeoutSec = 10
	cfg.Market.PollIntervalMS = 5000
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like LoadConfig but substitutes the built-in
// defaults when the file does not exist. Environment overrides still apply.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrConfigNotFound) {
		return nil, err
	}

	cfg = Default()
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %s", c.API.BaseURL)
	}
	if c.API.TimeoutSec <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}
	if c.Market.PollIntervalMS <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

// PollInterval returns the order book poll cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Market.PollIntervalMS) * time.Millisecond
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// overrideWithEnv applies environment variables on top of file settings.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("COMMODITY_API_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if level := os.Getenv("COMMODITY_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("COMMODITY_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
