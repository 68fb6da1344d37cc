package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetalTracker/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "CNY", cfg.DataSource.Currency)
	assert.Equal(t, "CNY=X", cfg.DataSource.FXSymbol)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "data/metal_tracker.db", cfg.Storage.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.HasStrategy())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "100"
data_source:
  provider: metalprice
  api_key: key
  currency: USD
storage:
  driver: file
log:
  level: debug
  pretty: true
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("REQUIRE_AUTH", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "100", cfg.Telegram.ChatID)
	assert.Equal(t, "metalprice", cfg.DataSource.Provider)
	assert.Empty(t, cfg.DataSource.FXSymbol)
	assert.Equal(t, "data/metal_tracker.json", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.RequireAuth)
	assert.True(t, cfg.Log.Pretty)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "kitco" }, "data_source.provider"},
		{"metalprice without key", func(c *Config) { c.DataSource.Provider = "metalprice" }, "api_key"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.driver"},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t" }, "must be set together"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.applyDefaults()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestApplyStrategy(t *testing.T) {
	path := writeConfig(t, `
strategy:
  total_capital: 200000
  accumulation_start_date: 2024-01-15T00:00:00Z
  rsi_thresholds:
    pause: 75
  limit_order_spreads:
    gold: [-0.5, -1, -2, -3]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.HasStrategy())

	base := model.DefaultStrategyConfig(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	out, err := cfg.ApplyStrategy(base)
	require.NoError(t, err)

	assert.Equal(t, 200000.0, out.TotalCapital)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), out.AccumulationStartDate)
	assert.Equal(t, 75.0, out.RSIThresholds.Pause)
	assert.Equal(t, 50.0, out.RSIThresholds.Reduce)
	assert.Equal(t, model.Spreads{-0.5, -1, -2, -3}, out.LimitOrderSpreads[model.Gold])
	assert.Equal(t, base.LimitOrderSpreads[model.Silver], out.LimitOrderSpreads[model.Silver])

	// base must stay untouched
	assert.Equal(t, model.Spreads{-1, -2.5, -4, -6}, base.LimitOrderSpreads[model.Gold])
}

func TestApplyStrategy_Invalid(t *testing.T) {
	cfg, err := Load(writeConfig(t, "strategy:\n  active_capital_percent: 90\n"))
	require.NoError(t, err)
	base := model.DefaultStrategyConfig(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err = cfg.ApplyStrategy(base)
	assert.ErrorContains(t, err, "strategy")
}
