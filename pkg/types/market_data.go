package types

import (
	"math"
	"time"
)

// Candle is one OHLCV bucket. Series are ordered by strictly increasing Time.
type Candle struct {
	Time       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	TickVolume float64
}

// TradedVolume returns the real traded volume when the feed reports one,
// falling back to the tick count as a proxy.
func (c Candle) TradedVolume() float64 {
	if c.Volume != 0 {
		return c.Volume
	}
	return c.TickVolume
}

// Tick is a point-in-time quote.
type Tick struct {
	Time   time.Time
	Bid    float64
	Ask    float64
	Last   float64
	Volume float64
}

// Position is an open position as reported by the broker.
type Position struct {
	Symbol    string
	Direction Signal
	Size      float64
	AvgPrice  float64
}

// AccountSnapshot is a read-only view of the account taken once per cycle.
type AccountSnapshot struct {
	Balance float64
	Equity  float64
	Margin  float64
}

// MarginLevel returns equity/margin as a percentage. Zero margin means no
// exposure, reported as +Inf so threshold checks always pass.
func (a AccountSnapshot) MarginLevel() float64 {
	if a.Margin <= 0 {
		return math.Inf(1)
	}
	return a.Equity / a.Margin * 100
}

// Drawdown returns the fractional decline of equity below balance.
func (a AccountSnapshot) Drawdown() float64 {
	if a.Balance <= 0 {
		return 0
	}
	return (a.Balance - a.Equity) / a.Balance
}
