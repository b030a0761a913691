package backtest

import (
	"time"

	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// SimulateExit scans future candles in time order and resolves where the
// trade closes. On each candle the stop-loss is checked before the
// take-profit, so a candle spanning both levels exits at the stop - the
// conservative reading of intrabar ambiguity. If neither level is touched
// before the data ends, the trade is liquidated at the last close.
func SimulateExit(future []types.Candle, decision types.TradingDecision, entryPrice float64) (float64, time.Time) {
	if len(future) == 0 {
		return entryPrice, time.Time{}
	}

	for _, candle := range future {
		if decision.Signal == types.SignalBuy {
			if candle.Low <= decision.StopLoss {
				return decision.StopLoss, candle.Time
			}
			if candle.High >= decision.TakeProfit {
				return decision.TakeProfit, candle.Time
			}
		} else {
			if candle.High >= decision.StopLoss {
				return decision.StopLoss, candle.Time
			}
			if candle.Low <= decision.TakeProfit {
				return decision.TakeProfit, candle.Time
			}
		}
	}

	last := future[len(future)-1]
	return last.Close, last.Time
}
