package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ValueZone/internal/zone"
)

// Preset is a ticker offered in the web UI's selection list.
type Preset struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	DataSource struct {
		Provider      string        `yaml:"provider"` // yahoo, vstrader or mock
		BaseURL       string        `yaml:"base_url"`
		APIKey        string        `yaml:"api_key"`
		Timeout       time.Duration `yaml:"timeout"`
		RatePerSecond float64       `yaml:"rate_per_second"`
		Burst         int           `yaml:"burst"`
		AdjustedClose bool          `yaml:"adjusted_close"`
		MockPrice     float64       `yaml:"mock_price"`
	} `yaml:"data_source"`
	Valuation struct {
		Window         int       `yaml:"window"`
		Period         string    `yaml:"period"`
		FallbackPeriod string    `yaml:"fallback_period"`
		Interval       string    `yaml:"interval"`
		Multipliers    []float64 `yaml:"multipliers"`
	} `yaml:"valuation"`
	Presets []Preset `yaml:"presets"`
	Watch   struct {
		Cron        string   `yaml:"cron"`
		Symbols     []string `yaml:"symbols"`
		Concurrency int      `yaml:"concurrency"`
		RunOnStart  bool     `yaml:"run_on_start"`
		StateFile   string   `yaml:"state_file"` // last zones when Redis is not configured
	} `yaml:"watch"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultPresets is the ticker list offered when none is configured.
func DefaultPresets() []Preset {
	return []Preset{
		{"AAPL", "Apple Inc."},
		{"MSFT", "Microsoft Corporation"},
		{"GOOGL", "Alphabet Inc."},
		{"AMZN", "Amazon.com Inc."},
		{"TSLA", "Tesla Inc."},
		{"NVDA", "NVIDIA Corporation"},
		{"META", "Meta Platforms Inc."},
		{"NFLX", "Netflix Inc."},
		{"BTC-USD", "Bitcoin USD"},
		{"ETH-USD", "Ethereum USD"},
		{"GLD", "SPDR Gold Trust"},
		{"SPY", "SPDR S&P 500 ETF"},
		{"QQQ", "Invesco QQQ Trust"},
	}
}

// Defaults returns a Config populated with built-in defaults.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 60 * time.Second
	cfg.Server.ShutdownTimeout = 5 * time.Second

	cfg.DataSource.Provider = "yahoo"
	cfg.DataSource.Timeout = 30 * time.Second
	cfg.DataSource.RatePerSecond = 2
	cfg.DataSource.Burst = 4
	cfg.DataSource.AdjustedClose = true
	cfg.DataSource.MockPrice = 100

	cfg.Valuation.Window = 200
	cfg.Valuation.Period = "10y"
	cfg.Valuation.FallbackPeriod = "5y"
	cfg.Valuation.Interval = "1wk"
	m := zone.DefaultPolicy().Multipliers
	cfg.Valuation.Multipliers = m[:]

	cfg.Presets = DefaultPresets()

	cfg.Watch.Cron = "0 0 22 * * 5"
	cfg.Watch.Concurrency = 4
	cfg.Watch.StateFile = "zone_state.json"

	cfg.Redis.KeyPrefix = "valuezone"

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies
// .env and environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, nil
}

// Policy returns the zone policy built from the configured multipliers.
func (c *Config) Policy() zone.Policy {
	var p zone.Policy
	copy(p.Multipliers[:], c.Valuation.Multipliers)
	return p
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Valuation.Window <= 0 {
		return fmt.Errorf("valuation.window must be positive")
	}
	if c.Valuation.Period == "" || c.Valuation.Interval == "" {
		return fmt.Errorf("valuation.period and valuation.interval are required")
	}
	if len(c.Valuation.Multipliers) != 4 {
		return fmt.Errorf("valuation.multipliers must have exactly 4 entries, got %d", len(c.Valuation.Multipliers))
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("valuation.multipliers: %w", err)
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the vstrader provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, vstrader, mock", c.DataSource.Provider)
	}
	if c.Watch.Concurrency <= 0 {
		return fmt.Errorf("watch.concurrency must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json")
	}
	return nil
}
