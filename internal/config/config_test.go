package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
)

// TestLoad_Defaults tests that a minimal environment yields the documented
// defaults
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRADING_SYMBOL", "XAUUSD")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "XAUUSD", cfg.Trading.Symbol)
	assert.Equal(t, "1m", cfg.Trading.PrimaryTimeframe)
	assert.Equal(t, "5m", cfg.Trading.SecondaryTimeframe)
	assert.Equal(t, 50, cfg.Trading.LookbackCandles)
	assert.Equal(t, time.Minute, cfg.Trading.CycleInterval)
	assert.Equal(t, 0.01, cfg.Risk.MaxRiskPerTrade)
	assert.Equal(t, 2.0, cfg.Risk.MinRewardRiskRatio)
	assert.Equal(t, "gpt-4o-mini", cfg.Oracle.Model)
}

// TestLoad_EnvOverrides tests env-driven overrides including list parsing
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRADING_SYMBOL", "BTCUSDT")
	t.Setenv("PRIMARY_TIMEFRAME", "5m")
	t.Setenv("CYCLE_INTERVAL", "5m")
	t.Setenv("MAX_RISK_PER_TRADE", "0.02")
	t.Setenv("NO_TRADE_HOURS", "0, 1, 22,23")
	t.Setenv("BYBIT_TESTNET", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "5m", cfg.Trading.PrimaryTimeframe)
	assert.Equal(t, 5*time.Minute, cfg.Trading.CycleInterval)
	assert.Equal(t, 0.02, cfg.Risk.MaxRiskPerTrade)
	assert.Equal(t, []int{0, 1, 22, 23}, cfg.Risk.NoTradeHours)
	assert.True(t, cfg.Exchange.Testnet)
}

// TestLoad_MissingSymbol tests the required-option failure path
func TestLoad_MissingSymbol(t *testing.T) {
	t.Setenv("TRADING_SYMBOL", "")

	_, err := Load("")
	require.Error(t, err)

	var botErr *boterrors.BotError
	require.True(t, errors.As(err, &botErr))
	assert.Equal(t, boterrors.ErrorCategoryConfiguration, botErr.Category)
}

// TestValidateLive tests the extra credential requirements of the live bot
func TestValidateLive(t *testing.T) {
	t.Setenv("TRADING_SYMBOL", "XAUUSD")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateLive())

	cfg.Exchange.APIKey = "key"
	cfg.Exchange.APISecret = "secret"
	cfg.Oracle.APIKey = "oracle-key"
	assert.NoError(t, cfg.ValidateLive())
}

// TestLoadRiskFile tests the JSON override path
func TestLoadRiskFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "risk.json")
	content := `{
		"max_risk_per_trade": 0.02,
		"max_simultaneous_positions": 5,
		"volatility_thresholds": {"1m": 0.001},
		"no_trade_hours": [3, 4]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadRiskFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.02, cfg.MaxRiskPerTrade)
	assert.Equal(t, 5, cfg.MaxSimultaneousPositions)
	assert.Equal(t, map[string]float64{"1m": 0.001}, cfg.VolatilityThresholds)
	assert.Equal(t, []int{3, 4}, cfg.NoTradeHours)
	assert.Equal(t, 2.0, cfg.MinRewardRiskRatio, "omitted fields keep defaults")
}

// TestLoadRiskFile_Invalid tests that out-of-range limits are refused
func TestLoadRiskFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "risk.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_risk_per_trade": 2.0}`), 0o644))

	_, err := LoadRiskFile(path)
	require.Error(t, err)

	var botErr *boterrors.BotError
	require.True(t, errors.As(err, &botErr))
	assert.Equal(t, boterrors.ErrorCategoryConfiguration, botErr.Category)
}

// TestLoadRiskFile_Missing tests the unreadable-file error
func TestLoadRiskFile_Missing(t *testing.T) {
	_, err := LoadRiskFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
