package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"auction_go/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every application setting.
// Values loaded by LoadConfig can be overridden with environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Clearing struct {
		BandPercent decimal.Decimal `yaml:"band_percent"`
		OnlyFilled  bool            `yaml:"only_filled"`
		DumpDir     string          `yaml:"dump_dir"`
	} `yaml:"clearing"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Feed struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
		SendBuffer int    `yaml:"send_buffer"`
	} `yaml:"feed"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "auction-go"
	cfg.Clearing.BandPercent = domain.PriceRangePercent
	cfg.Clearing.DumpDir = "dumps"
	cfg.Storage.Path = "data/auction.db"
	cfg.Feed.ListenAddr = "localhost:8090"
	cfg.Feed.SendBuffer = 64
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig reads and parses the configuration file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to DefaultConfig,
// still honoring environment overrides, when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if !errors.Is(err, domain.ErrConfigNotFound) {
		return cfg, err
	}

	cfg = DefaultConfig()
	overrideWithEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	one := decimal.NewFromInt(1)
	if !c.Clearing.BandPercent.IsPositive() || c.Clearing.BandPercent.GreaterThanOrEqual(one) {
		return &domain.ConfigError{
			Field: "clearing.band_percent",
			Err:   fmt.Errorf("must be in (0, 1), got %s", c.Clearing.BandPercent),
		}
	}

	if strings.TrimSpace(c.Storage.Path) == "" {
		return &domain.ConfigError{Field: "storage.path", Err: errors.New("must not be empty")}
	}

	if c.Feed.Enabled && c.Feed.ListenAddr == "" {
		return &domain.ConfigError{Field: "feed.listen_addr", Err: errors.New("required when feed is enabled")}
	}
	if c.Feed.SendBuffer <= 0 {
		return &domain.ConfigError{Field: "feed.send_buffer", Err: errors.New("must be positive")}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &domain.ConfigError{Field: "logging.level", Err: fmt.Errorf("unknown level %q", c.Logging.Level)}
	}

	return nil
}

// overrideWithEnv replaces settings with environment variables when present.
func overrideWithEnv(cfg *Config) {
	if path := os.Getenv("AUCTION_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if addr := os.Getenv("AUCTION_FEED_ADDR"); addr != "" {
		cfg.Feed.ListenAddr = addr
	}
	if level := os.Getenv("AUCTION_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
}
