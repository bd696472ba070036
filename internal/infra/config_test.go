package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"auction_go/internal/domain"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  name: test
clearing:
  band_percent: 0.15
  only_filled: true
storage:
  path: /tmp/auction-test.db
feed:
  enabled: true
  listen_addr: localhost:9999
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Clearing.BandPercent.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("Expected band 0.15, got %s", cfg.Clearing.BandPercent)
	}
	if !cfg.Clearing.OnlyFilled {
		t.Error("Expected only_filled to be true")
	}
	if cfg.Feed.ListenAddr != "localhost:9999" {
		t.Errorf("Expected listen addr localhost:9999, got %s", cfg.Feed.ListenAddr)
	}
	// Defaults survive for keys missing in the file.
	if cfg.Feed.SendBuffer != 64 {
		t.Errorf("Expected default send buffer 64, got %d", cfg.Feed.SendBuffer)
	}
	if cfg.Clearing.DumpDir != "dumps" {
		t.Errorf("Expected default dump dir, got %s", cfg.Clearing.DumpDir)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "storage:\n  path: file.db\n")

	t.Setenv("AUCTION_DB_PATH", "env.db")
	t.Setenv("AUCTION_LOG_LEVEL", "WARN")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Storage.Path != "env.db" {
		t.Errorf("Expected env.db, got %s", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected warn, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfigOrDefault(t *testing.T) {
	t.Setenv("AUCTION_FEED_ADDR", "127.0.0.1:9999")

	cfg, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigOrDefault failed: %v", err)
	}
	if !cfg.Clearing.BandPercent.Equal(domain.PriceRangePercent) {
		t.Errorf("Expected default band, got %s", cfg.Clearing.BandPercent)
	}
	if cfg.Feed.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("Env override not applied, got %s", cfg.Feed.ListenAddr)
	}

	path := writeConfig(t, "clearing:\n  band_percent: 2\n")
	if _, err := LoadConfigOrDefault(path); err == nil {
		t.Error("Invalid file should still fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(*Config)
	}{
		{"zero band", "clearing.band_percent", func(c *Config) { c.Clearing.BandPercent = decimal.Zero }},
		{"band of 100%", "clearing.band_percent", func(c *Config) { c.Clearing.BandPercent = decimal.NewFromInt(1) }},
		{"empty storage path", "storage.path", func(c *Config) { c.Storage.Path = " " }},
		{"feed without addr", "feed.listen_addr", func(c *Config) { c.Feed.Enabled = true; c.Feed.ListenAddr = "" }},
		{"zero send buffer", "feed.send_buffer", func(c *Config) { c.Feed.SendBuffer = 0 }},
		{"bad log level", "logging.level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)

			var cfgErr *domain.ConfigError
			if err := cfg.Validate(); !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}
