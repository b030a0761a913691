package risk

import "math"

// Sizer converts a risk budget into a position size and enforces the
// minimum reward:risk ratio on proposed stop levels.
type Sizer struct {
	cfg Config
}

// NewSizer creates a position sizer.
func NewSizer(cfg Config) *Sizer {
	return &Sizer{cfg: cfg}
}

// AdjustStopLoss reshapes the stop so the trade carries at least the
// configured reward:risk ratio relative to the given take-profit. The
// replacement formula entry - (takeProfit-entry)/2 is applied identically
// for both directions.
//
// For a sell this puts the replacement stop on the wrong side of entry.
// That is the long-standing behavior of this sizing rule and callers depend
// on it; AdjustStopLossDirectional is the corrected variant.
func (s *Sizer) AdjustStopLoss(entryPrice, stopLoss, takeProfit float64) float64 {
	risk := math.Abs(entryPrice - stopLoss)
	reward := math.Abs(takeProfit - entryPrice)
	if risk == 0 || reward/risk < s.cfg.MinRewardRiskRatio {
		return entryPrice - (takeProfit-entryPrice)/2
	}
	return stopLoss
}

// AdjustStopLossDirectional is the direction-aware correction of
// AdjustStopLoss: the replacement stop always lands on the loss side of
// entry, half the reward distance away, for buys and sells alike. Not used
// by the trading pipeline; kept for an eventual migration.
func (s *Sizer) AdjustStopLossDirectional(entryPrice, stopLoss, takeProfit float64) float64 {
	risk := math.Abs(entryPrice - stopLoss)
	reward := math.Abs(takeProfit - entryPrice)
	if risk != 0 && reward/risk >= s.cfg.MinRewardRiskRatio {
		return stopLoss
	}
	if takeProfit >= entryPrice {
		return entryPrice - reward/2
	}
	return entryPrice + reward/2
}

// CalculatePositionSize sizes a trade from the risk budget and the stop
// distance. The budget is capped at balance times MaxRiskPerTrade and the
// result is rounded to 4 decimal places. Clamping to the broker's lot
// step/min/max is the caller's concern.
func (s *Sizer) CalculatePositionSize(balance, riskAmount, stopLossDistance float64) float64 {
	if stopLossDistance <= 0 {
		return 0
	}
	maxRisk := balance * s.cfg.MaxRiskPerTrade
	if riskAmount > maxRisk {
		riskAmount = maxRisk
	}
	size := riskAmount / stopLossDistance
	return math.Round(size*10000) / 10000
}
