package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/risk"
)

// Config is the full runtime configuration, assembled from environment
// variables plus an optional JSON risk file.
type Config struct {
	Environment string
	LogLevel    string

	Exchange struct {
		APIKey    string
		APISecret string
		Testnet   bool
		Demo      bool
	}

	Oracle struct {
		APIKey     string
		APIURL     string
		Model      string
		MaxRetries int
		RetryDelay time.Duration
	}

	Trading struct {
		Symbol             string
		PrimaryTimeframe   string
		SecondaryTimeframe string
		LookbackCandles    int
		CycleInterval      time.Duration
		MaxDailyTrades     int
		InitialBalance     float64
	}

	Risk risk.Config

	Monitoring struct {
		MetricsPort int
		HealthPort  int
	}

	Notifications struct {
		TelegramToken  string
		TelegramChatID string
	}
}

// Load assembles the configuration from the environment. When riskFile is
// non-empty, the JSON risk file overrides the env-derived risk limits.
func Load(riskFile string) (*Config, error) {
	cfg := &Config{}

	cfg.Environment = getEnv("ENV", "development")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.Exchange.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.Exchange.APISecret = getEnv("BYBIT_API_SECRET", "")
	cfg.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", false)
	cfg.Exchange.Demo = getEnvBool("BYBIT_DEMO", false)

	cfg.Oracle.APIKey = getEnv("ORACLE_API_KEY", os.Getenv("OPENAI_API_KEY"))
	cfg.Oracle.APIURL = getEnv("ORACLE_API_URL", "")
	cfg.Oracle.Model = getEnv("ORACLE_MODEL", "gpt-4o-mini")
	cfg.Oracle.MaxRetries = getEnvInt("ORACLE_MAX_RETRIES", 3)
	cfg.Oracle.RetryDelay = getEnvDuration("ORACLE_RETRY_DELAY", 5*time.Second)

	cfg.Trading.Symbol = getEnv("TRADING_SYMBOL", "")
	cfg.Trading.PrimaryTimeframe = getEnv("PRIMARY_TIMEFRAME", "1m")
	cfg.Trading.SecondaryTimeframe = getEnv("SECONDARY_TIMEFRAME", "5m")
	cfg.Trading.LookbackCandles = getEnvInt("LOOKBACK_CANDLES", 50)
	cfg.Trading.CycleInterval = getEnvDuration("CYCLE_INTERVAL", time.Minute)
	cfg.Trading.MaxDailyTrades = getEnvInt("MAX_DAILY_TRADES", 10)
	cfg.Trading.InitialBalance = getEnvFloat("INITIAL_BALANCE", 200)

	cfg.Risk = riskFromEnv()
	if riskFile != "" {
		fileRisk, err := LoadRiskFile(riskFile)
		if err != nil {
			return nil, err
		}
		cfg.Risk = fileRisk
	}

	cfg.Monitoring.MetricsPort = getEnvInt("METRICS_PORT", 8080)
	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)

	cfg.Notifications.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.Notifications.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func riskFromEnv() risk.Config {
	cfg := risk.DefaultConfig()
	cfg.MaxRiskPerTrade = getEnvFloat("MAX_RISK_PER_TRADE", cfg.MaxRiskPerTrade)
	cfg.MinMarginLevelPct = getEnvFloat("MIN_MARGIN_LEVEL_PCT", cfg.MinMarginLevelPct)
	cfg.MaxSimultaneousPositions = getEnvInt("MAX_SIMULTANEOUS_POSITIONS", cfg.MaxSimultaneousPositions)
	cfg.MaxDrawdownFraction = getEnvFloat("MAX_DRAWDOWN_FRACTION", cfg.MaxDrawdownFraction)
	cfg.NoTradeHours = getEnvIntList("NO_TRADE_HOURS", cfg.NoTradeHours)
	return cfg
}

func (c *Config) validate() error {
	if c.Trading.Symbol == "" {
		return boterrors.NewConfigurationError("config", "validate", "TRADING_SYMBOL is required")
	}
	if c.Trading.LookbackCandles < 2 {
		return boterrors.NewConfigurationError("config", "validate", "LOOKBACK_CANDLES must be at least 2")
	}
	if c.Trading.CycleInterval <= 0 {
		return boterrors.NewConfigurationError("config", "validate", "CYCLE_INTERVAL must be positive")
	}
	if err := validateRisk(c.Risk); err != nil {
		return err
	}
	return nil
}

// ValidateLive checks the credentials the live bot needs on top of the
// shared validation. The backtester runs without them.
func (c *Config) ValidateLive() error {
	if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
		return boterrors.NewConfigurationError("config", "validate",
			"BYBIT_API_KEY and BYBIT_API_SECRET are required for live trading")
	}
	if c.Oracle.APIKey == "" {
		return boterrors.NewConfigurationError("config", "validate", "ORACLE_API_KEY is required")
	}
	return nil
}

func validateRisk(cfg risk.Config) error {
	if cfg.MaxRiskPerTrade <= 0 || cfg.MaxRiskPerTrade > 1 {
		return boterrors.NewConfigurationError("config", "validate",
			"max_risk_per_trade must be in (0, 1]")
	}
	if cfg.MaxDrawdownFraction <= 0 || cfg.MaxDrawdownFraction > 1 {
		return boterrors.NewConfigurationError("config", "validate",
			"max_drawdown_fraction must be in (0, 1]")
	}
	if cfg.MaxSimultaneousPositions < 1 {
		return boterrors.NewConfigurationError("config", "validate",
			"max_simultaneous_positions must be at least 1")
	}
	for _, h := range cfg.NoTradeHours {
		if h < 0 || h > 23 {
			return boterrors.NewConfigurationError("config", "validate",
				fmt.Sprintf("no_trade_hours entry %d out of range", h))
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		parsed, err := time.ParseDuration(val)
		if err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvIntList parses a comma-separated list, e.g. "0,1,22,23".
func getEnvIntList(key string, defaultVal []int) []int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []int
	for _, part := range strings.Split(val, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultVal
		}
		out = append(out, parsed)
	}
	return out
}
