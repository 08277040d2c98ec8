package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Model struct {
		Path       string `yaml:"path"`
		ScalerPath string `yaml:"scaler_path"`
		SeqLength  int    `yaml:"seq_length"`
	} `yaml:"model"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Feed struct {
		BaseURL      string        `yaml:"base_url"`
		Ticker       string        `yaml:"ticker"`
		LookbackDays int           `yaml:"lookback_days"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
		Redis        struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"feed"`
	Sampler struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"sampler"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("TICKER"); v != "" {
		c.Feed.Ticker = v
	}
	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("SCALER_PATH"); v != "" {
		c.Model.ScalerPath = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Feed.Redis.Enabled = true
		c.Feed.Redis.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse PORT: %w", err)
		}
		c.Server.Port = port
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Model.SeqLength == 0 {
		c.Model.SeqLength = 60
	}
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Feed.LookbackDays == 0 {
		c.Feed.LookbackDays = 120
	}
	if c.Feed.CacheTTL == 0 {
		c.Feed.CacheTTL = time.Hour
	}
	if c.Sampler.Interval == 0 {
		c.Sampler.Interval = 10 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if c.Model.ScalerPath == "" {
		return fmt.Errorf("model.scaler_path is required")
	}
	if c.Model.SeqLength <= 0 {
		return fmt.Errorf("model.seq_length must be positive, got %d", c.Model.SeqLength)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Feed.Ticker == "" {
		return fmt.Errorf("feed.ticker is required")
	}
	if c.Feed.LookbackDays <= c.Model.SeqLength {
		return fmt.Errorf("feed.lookback_days must exceed model.seq_length")
	}
	return nil
}
