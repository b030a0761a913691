package risk

// Config holds the risk limits applied before any trade is opened. It is
// immutable after construction; components carrying it hold no per-call
// state, so independent instances can run in parallel without locks.
type Config struct {
	// MaxRiskPerTrade is the fraction of the account balance a single
	// trade may put at risk.
	MaxRiskPerTrade float64

	// MinMarginLevelPct is the minimum equity/margin ratio, in percent,
	// required to open new trades.
	MinMarginLevelPct float64

	// MaxSimultaneousPositions caps the number of open positions.
	MaxSimultaneousPositions int

	// MaxDrawdownFraction is the maximum tolerated (balance-equity)/balance.
	MaxDrawdownFraction float64

	// VolatilityThresholds maps a timeframe label to the maximum standard
	// deviation of percentage returns over the last 20 samples.
	VolatilityThresholds map[string]float64

	// NoTradeHours lists hours of day (0-23) during which no new trades
	// are opened.
	NoTradeHours []int

	// MinRewardRiskRatio is the minimum take-profit to stop-loss distance
	// ratio enforced by the stop adjustment.
	MinRewardRiskRatio float64
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		MaxRiskPerTrade:          0.01,
		MinMarginLevelPct:        200,
		MaxSimultaneousPositions: 3,
		MaxDrawdownFraction:      0.10,
		VolatilityThresholds: map[string]float64{
			"1m": 0.002,
			"5m": 0.005,
		},
		NoTradeHours:       nil,
		MinRewardRiskRatio: 2.0,
	}
}

// IsNoTradeHour reports whether the given hour of day is blocked.
func (c Config) IsNoTradeHour(hour int) bool {
	for _, h := range c.NoTradeHours {
		if h == hour {
			return true
		}
	}
	return false
}
