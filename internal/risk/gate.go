package risk

import (
	"math"
	"time"

	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// volatilityWindow is the number of recent returns sampled per timeframe.
const volatilityWindow = 20

// Logger is the subset of the file logger the gate reports blocked
// conditions through.
type Logger interface {
	Warning(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warning(string, ...interface{}) {}

// Gate decides whether new trades may be opened. It is a pure function of
// the inputs plus configuration; the clock is injectable for tests.
type Gate struct {
	cfg Config
	log Logger
	now func() time.Time
}

// NewGate creates a risk gate. A nil logger silences condition reporting.
func NewGate(cfg Config, log Logger) *Gate {
	if log == nil {
		log = nopLogger{}
	}
	return &Gate{cfg: cfg, log: log, now: time.Now}
}

// WithClock overrides the time source. Used by tests and backtests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// CanOpenMoreTrades checks every account-level constraint and returns false
// if any of them fails. All failing conditions are logged, not just the
// first one.
func (g *Gate) CanOpenMoreTrades(account types.AccountSnapshot, positions []types.Position, marketData map[string][]indicators.Row) bool {
	ok := true

	if level := account.MarginLevel(); level < g.cfg.MinMarginLevelPct {
		g.log.Warning("margin level %.1f%% below minimum %.1f%%", level, g.cfg.MinMarginLevelPct)
		ok = false
	}

	if len(positions) >= g.cfg.MaxSimultaneousPositions {
		g.log.Warning("open positions %d at limit %d", len(positions), g.cfg.MaxSimultaneousPositions)
		ok = false
	}

	if dd := account.Drawdown(); dd > g.cfg.MaxDrawdownFraction {
		g.log.Warning("drawdown %.2f%% above maximum %.2f%%", dd*100, g.cfg.MaxDrawdownFraction*100)
		ok = false
	}

	for timeframe, threshold := range g.cfg.VolatilityThresholds {
		rows, present := marketData[timeframe]
		if !present {
			continue
		}
		if vol := recentVolatility(rows); vol > threshold {
			g.log.Warning("volatility %.6f on %s above threshold %.6f", vol, timeframe, threshold)
			ok = false
		}
	}

	if hour := g.now().Hour(); g.cfg.IsNoTradeHour(hour) {
		g.log.Warning("hour %d is in the no-trade window", hour)
		ok = false
	}

	return ok
}

// ShouldExecuteTrade suppresses a decision when a position in the same
// direction is already open. Opposite-direction trades pass; exposure
// limiting is CanOpenMoreTrades' job.
func (g *Gate) ShouldExecuteTrade(decision types.TradingDecision, positions []types.Position) bool {
	for _, p := range positions {
		if p.Direction == decision.Signal {
			g.log.Warning("skipping duplicate %s: position already open in that direction", decision.Signal)
			return false
		}
	}
	return true
}

// recentVolatility is the sample standard deviation of the last
// volatilityWindow percentage returns.
func recentVolatility(rows []indicators.Row) float64 {
	start := len(rows) - volatilityWindow
	if start < 0 {
		start = 0
	}
	window := rows[start:]
	if len(window) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range window {
		mean += r.Returns
	}
	mean /= float64(len(window))

	variance := 0.0
	for _, r := range window {
		variance += (r.Returns - mean) * (r.Returns - mean)
	}
	return math.Sqrt(variance / float64(len(window)-1))
}
