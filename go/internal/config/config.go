// Package config loads the engine configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration as read from YAML.
type Config struct {
	Game struct {
		Stakes          []string `yaml:"stakes"`
		FeeRate         string   `yaml:"fee_rate"`
		FeeAddress      string   `yaml:"fee_address"`
		AnswerWindowSec int      `yaml:"answer_window_sec"`
		WatchdogTickSec int      `yaml:"watchdog_tick_sec"`
		RetentionSec    int      `yaml:"retention_sec"`
		CountdownSec    int      `yaml:"countdown_sec"`
		Currency        string   `yaml:"currency"`
	} `yaml:"game"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	Bucket struct {
		Endpoint string `yaml:"endpoint"`
		TempDir  string `yaml:"temp_dir"`
	} `yaml:"bucket"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// Load reads the config file and applies defaults for anything omitted.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Game.Stakes = []string{"0", "0.01", "0.05", "0.1", "0.25", "0.5", "1"}
	cfg.Game.FeeRate = "0.5"
	cfg.Game.FeeAddress = os.Getenv("FEE_ADDRESS")
	cfg.Game.AnswerWindowSec = 120
	cfg.Game.WatchdogTickSec = 10
	cfg.Game.RetentionSec = 120
	cfg.Game.CountdownSec = 5
	cfg.Game.Currency = "BNB"
	cfg.NATS.URL = GetEnv("NATS_URL", "nats://localhost:4222")
	cfg.Bucket.Endpoint = os.Getenv("BUCKET_ENDPOINT")
	cfg.Bucket.TempDir = GetEnv("TEMP_DIR", "temp")
	cfg.Metrics.Addr = GetEnv("METRICS_ADDR", ":9100")
	return cfg
}

// StakeTiers parses the configured tiers into amounts.
func (c *Config) StakeTiers() ([]decimal.Decimal, error) {
	tiers := make([]decimal.Decimal, len(c.Game.Stakes))
	for i, raw := range c.Game.Stakes {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stake tier %q: %w", raw, err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("negative stake tier %q", raw)
		}
		tiers[i] = d
	}
	return tiers, nil
}

// FeeRate parses the configured house cut.
func (c *Config) FeeRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Game.FeeRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid fee rate %q: %w", c.Game.FeeRate, err)
	}
	return rate, nil
}

func (c *Config) AnswerWindow() time.Duration {
	return time.Duration(c.Game.AnswerWindowSec) * time.Second
}

func (c *Config) WatchdogTick() time.Duration {
	return time.Duration(c.Game.WatchdogTickSec) * time.Second
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Game.RetentionSec) * time.Second
}

// GetEnv returns the environment value or a fallback.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
