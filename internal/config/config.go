package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MetalTracker/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo, metalprice or mock
		APIKey   string `yaml:"api_key"`
		FXSymbol string `yaml:"fx_symbol"`
		Currency string `yaml:"currency"`
	} `yaml:"data_source"`
	Schedule struct {
		DailyCron   string `yaml:"daily_cron"`
		MonthlyCron string `yaml:"monthly_cron"`
	} `yaml:"schedule"`
	Storage struct {
		Driver string `yaml:"driver"` // sqlite, file or memory
		Path   string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Addr        string `yaml:"addr"`
		RequireAuth bool   `yaml:"require_auth"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	// Strategy holds optional overrides decoded onto the persisted strategy at startup.
	Strategy yaml.Node `yaml:"strategy"`
	Proxy    string    `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env values never override variables already set in the process environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func (c *Config) applyEnv() {
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.DataSource.Provider, "DATA_PROVIDER")
	setString(&c.DataSource.APIKey, "METALPRICE_API_KEY")
	setString(&c.DataSource.FXSymbol, "FX_SYMBOL")
	setString(&c.DataSource.Currency, "CURRENCY")
	setString(&c.Schedule.DailyCron, "CRON_DAILY")
	setString(&c.Schedule.MonthlyCron, "CRON_MONTHLY")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.Path, "STORAGE_PATH")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setBool(&c.Server.RequireAuth, "REQUIRE_AUTH")
	setString(&c.Log.Level, "LOG_LEVEL")
	setBool(&c.Log.Pretty, "LOG_PRETTY")
	setString(&c.Proxy, "HTTPS_PROXY")
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Currency == "" {
		c.DataSource.Currency = "CNY"
	}
	if c.DataSource.FXSymbol == "" && c.DataSource.Currency != "USD" {
		c.DataSource.FXSymbol = c.DataSource.Currency + "=X"
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 0 18 * * 1-5"
	}
	if c.Schedule.MonthlyCron == "" {
		c.Schedule.MonthlyCron = "0 0 9 1 * *"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "file":
			c.Storage.Path = "data/metal_tracker.json"
		default:
			c.Storage.Path = "data/metal_tracker.db"
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// TelegramEnabled reports whether both bot token and chat ID are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "metalprice":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for metalprice")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	switch c.Storage.Driver {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not supported", c.Log.Level)
	}
	return nil
}

// HasStrategy reports whether the file carries a strategy section.
func (c *Config) HasStrategy() bool {
	return !c.Strategy.IsZero()
}

// ApplyStrategy decodes the strategy section onto a copy of base. Keys absent from
// the file keep their base values.
func (c *Config) ApplyStrategy(base model.StrategyConfig) (model.StrategyConfig, error) {
	out := base.Clone()
	if !c.HasStrategy() {
		return out, nil
	}
	if err := c.Strategy.Decode(&out); err != nil {
		return base, fmt.Errorf("parse strategy: %w", err)
	}
	if err := out.Validate(); err != nil {
		return base, fmt.Errorf("strategy: %w", err)
	}
	return out, nil
}
