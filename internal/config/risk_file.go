package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/risk"
)

// riskFileSchema is the on-disk JSON shape of the risk limits. Omitted
// fields keep their defaults.
type riskFileSchema struct {
	MaxRiskPerTrade          *float64           `json:"max_risk_per_trade"`
	MinMarginLevelPct        *float64           `json:"min_margin_level_pct"`
	MaxSimultaneousPositions *int               `json:"max_simultaneous_positions"`
	MaxDrawdownFraction      *float64           `json:"max_drawdown_fraction"`
	VolatilityThresholds     map[string]float64 `json:"volatility_thresholds"`
	NoTradeHours             []int              `json:"no_trade_hours"`
	MinRewardRiskRatio       *float64           `json:"min_reward_risk_ratio"`
}

// LoadRiskFile reads risk limits from a JSON file. A bare name without path
// separators is resolved under configs/.
func LoadRiskFile(configFile string) (risk.Config, error) {
	if !strings.ContainsAny(configFile, "/\\") {
		configFile = filepath.Join("configs", configFile)
	}
	if !strings.HasSuffix(configFile, ".json") {
		configFile += ".json"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return risk.Config{}, boterrors.NewConfigurationError("config", "load risk file",
			fmt.Sprintf("failed to read %s: %v", configFile, err))
	}

	var schema riskFileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return risk.Config{}, boterrors.NewConfigurationError("config", "load risk file",
			fmt.Sprintf("failed to parse %s: %v", configFile, err))
	}

	cfg := risk.DefaultConfig()
	if schema.MaxRiskPerTrade != nil {
		cfg.MaxRiskPerTrade = *schema.MaxRiskPerTrade
	}
	if schema.MinMarginLevelPct != nil {
		cfg.MinMarginLevelPct = *schema.MinMarginLevelPct
	}
	if schema.MaxSimultaneousPositions != nil {
		cfg.MaxSimultaneousPositions = *schema.MaxSimultaneousPositions
	}
	if schema.MaxDrawdownFraction != nil {
		cfg.MaxDrawdownFraction = *schema.MaxDrawdownFraction
	}
	if schema.VolatilityThresholds != nil {
		cfg.VolatilityThresholds = schema.VolatilityThresholds
	}
	if schema.NoTradeHours != nil {
		cfg.NoTradeHours = schema.NoTradeHours
	}
	if schema.MinRewardRiskRatio != nil {
		cfg.MinRewardRiskRatio = *schema.MinRewardRiskRatio
	}

	if err := validateRisk(cfg); err != nil {
		return risk.Config{}, err
	}
	return cfg, nil
}
