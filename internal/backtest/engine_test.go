package backtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/internal/risk"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// scriptedOracle proposes a fixed-offset bracket around the latest close.
type scriptedOracle struct {
	response func(latestClose float64) string
	calls    int
}

func (o *scriptedOracle) Propose(_ context.Context, primary, _ []indicators.Row) (string, error) {
	o.calls++
	return o.response(primary[len(primary)-1].Close), nil
}

func bracketBuy(latestClose float64) string {
	return fmt.Sprintf("Signal: buy\nStop Loss: %.2f\nTake Profit: %.2f\nExplanation: scripted",
		latestClose-10, latestClose+20)
}

func seriesCandles(closes ...float64) []types.Candle {
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		out[i] = types.Candle{
			Time:   base.Add(time.Duration(i) * 5 * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

// TestEngine_Run_TakeProfitTrade tests the full pipeline over one window
// that resolves at the take-profit
func TestEngine_Run_TakeProfitTrade(t *testing.T) {
	oracle := &scriptedOracle{response: bracketBuy}
	engine := NewEngine(200, indicators.DefaultConfig(), risk.DefaultConfig(), oracle, WithLookback(5))

	candles := seriesCandles(100, 100, 100, 100, 100, 110)
	// Make the future candle sweep through the take-profit without touching
	// the stop.
	candles[5].High = 126
	candles[5].Low = 99

	results, err := engine.Run(context.Background(), candles)
	require.NoError(t, err)
	require.Equal(t, 1, results.TotalTrades)

	trade := results.Trades[0]
	assert.Equal(t, types.Signal("buy"), trade.Signal)
	assert.Equal(t, 100.0, trade.EntryPrice)
	assert.Equal(t, 120.0, trade.ExitPrice)
	assert.Equal(t, 90.0, trade.StopLoss, "2:1 bracket is kept unchanged")
	assert.InDelta(t, 0.2, trade.PositionSize, 1e-9, "1%% of 200 over a 10 point stop")
	assert.InDelta(t, 4.0, trade.PnL, 1e-9)
	assert.InDelta(t, 204.0, results.EndBalance, 1e-9)
}

// TestEngine_Run_HorizonClose tests forced liquidation bookkeeping
func TestEngine_Run_HorizonClose(t *testing.T) {
	oracle := &scriptedOracle{response: bracketBuy}
	engine := NewEngine(200, indicators.DefaultConfig(), risk.DefaultConfig(), oracle, WithLookback(5))

	candles := seriesCandles(100, 100, 100, 100, 100, 101, 102)
	results, err := engine.Run(context.Background(), candles)
	require.NoError(t, err)
	require.Equal(t, 2, results.TotalTrades)

	// Neither bracket level is reachable; both trades close at the last
	// available price.
	last := candles[len(candles)-1]
	for _, trade := range results.Trades {
		assert.Equal(t, last.Close, trade.ExitPrice)
		assert.Equal(t, last.Time, trade.ExitTime)
	}
}

// TestEngine_Run_InsufficientDataSkips tests that the oracle opt-out simply
// produces no trades
func TestEngine_Run_InsufficientDataSkips(t *testing.T) {
	oracle := &scriptedOracle{response: func(float64) string {
		return "Insufficient data to make a trading decision."
	}}
	engine := NewEngine(200, indicators.DefaultConfig(), risk.DefaultConfig(), oracle, WithLookback(5))

	results, err := engine.Run(context.Background(), seriesCandles(100, 100, 100, 100, 100, 101))
	require.NoError(t, err)
	assert.Equal(t, 0, results.TotalTrades)
	assert.Equal(t, 1, oracle.calls)
	assert.Equal(t, 200.0, results.EndBalance)
}

// TestEngine_Run_ShortSeries tests the minimum data requirement
func TestEngine_Run_ShortSeries(t *testing.T) {
	oracle := &scriptedOracle{response: bracketBuy}
	engine := NewEngine(200, indicators.DefaultConfig(), risk.DefaultConfig(), oracle, WithLookback(50))

	_, err := engine.Run(context.Background(), seriesCandles(100, 101, 102))
	assert.Error(t, err)
}

// TestEngine_Run_ContextCancellation tests that a cancelled context stops
// the replay
func TestEngine_Run_ContextCancellation(t *testing.T) {
	oracle := &scriptedOracle{response: bracketBuy}
	engine := NewEngine(200, indicators.DefaultConfig(), risk.DefaultConfig(), oracle, WithLookback(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Run(ctx, seriesCandles(100, 100, 100, 100, 100, 101))
	assert.ErrorIs(t, err, context.Canceled)
}
