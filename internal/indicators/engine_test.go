package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

func makeCandles(closes ...float64) []types.Candle {
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		candles[i] = types.Candle{
			Time:   base.Add(time.Duration(i) * 5 * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64(i),
		}
	}
	return candles
}

func assertNoNaN(t *testing.T, rows []Row) {
	t.Helper()
	for i, r := range rows {
		fields := map[string]float64{
			"Returns": r.Returns, "SMA20": r.SMA20, "EMA50": r.EMA50,
			"RSI": r.RSI, "MACD": r.MACD, "SignalLine": r.SignalLine,
			"MACDHistogram": r.MACDHistogram, "BBMiddle": r.BBMiddle,
			"BBUpper": r.BBUpper, "BBLower": r.BBLower, "BBWidth": r.BBWidth,
			"StochK": r.StochK, "StochD": r.StochD, "ATR": r.ATR,
			"ADX": r.ADX, "Momentum": r.Momentum, "ROC": r.ROC,
			"OBV": r.OBV, "VolumeROC": r.VolumeROC,
		}
		for name, v := range fields {
			assert.False(t, math.IsNaN(v), "row %d field %s is NaN", i, name)
		}
	}
}

// TestEngine_Compute_EmptySeries tests that only an empty series is rejected
func TestEngine_Compute_EmptySeries(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	rows, err := engine.Compute(nil)
	assert.Error(t, err)
	assert.Nil(t, rows)
}

// TestEngine_Compute_SingleCandle tests graceful degradation on minimal input
func TestEngine_Compute_SingleCandle(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	rows, err := engine.Compute(makeCandles(2405.5))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assertNoNaN(t, rows)
	assert.Equal(t, 2405.5, rows[0].SMA20)
	assert.Equal(t, 2405.5, rows[0].EMA50)
}

// TestEngine_Compute_NoNaN tests that no output field is ever undefined
func TestEngine_Compute_NoNaN(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 2400 + 3*math.Sin(float64(i)/5)
	}
	rows, err := engine.Compute(makeCandles(closes...))
	require.NoError(t, err)
	require.Len(t, rows, 120)
	assertNoNaN(t, rows)
}

// TestEngine_Compute_ConstantSeries tests the flat-market edge cases: zero
// stochastic range, zero loss mean, zero directional movement
func TestEngine_Compute_ConstantSeries(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 2400
	}
	rows, err := engine.Compute(makeCandles(closes...))
	require.NoError(t, err)
	assertNoNaN(t, rows)

	last := rows[len(rows)-1]
	assert.Equal(t, 100.0, last.RSI, "zero loss mean saturates RSI at 100")
	assert.Equal(t, 0.0, last.Momentum)
	assert.Equal(t, 0.0, last.MACD)
}

// TestEngine_Compute_SMAWindow tests the 20-period SMA over a fully filled window
func TestEngine_Compute_SMAWindow(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	rows, err := engine.Compute(makeCandles(closes...))
	require.NoError(t, err)

	// Mean of 6..25 at the last row.
	assert.InDelta(t, 15.5, rows[24].SMA20, 1e-9)
	// Partial window at row 2: mean of 1..3.
	assert.InDelta(t, 2.0, rows[2].SMA20, 1e-9)
}

// TestEngine_Compute_RSISaturation tests that a pure uptrend pins RSI to 100
func TestEngine_Compute_RSISaturation(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 2400 + float64(i)
	}
	rows, err := engine.Compute(makeCandles(closes...))
	require.NoError(t, err)
	assert.Equal(t, 100.0, rows[len(rows)-1].RSI)
}

// TestEngine_Compute_StochasticCarryForward tests the zero-range convention:
// %K holds its prior valid value instead of dividing by zero
func TestEngine_Compute_StochasticCarryForward(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	closes := []float64{2400, 2402, 2404, 2406, 2408, 2410}
	candles := makeCandles(closes...)
	// Collapse the trailing candles so the rolling 14-period range stays
	// non-zero thanks to the earlier bars, then feed a genuinely flat tail
	// long enough to zero it out.
	flat := makeCandles(2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410, 2410)
	for i := range flat {
		flat[i].High = 2410
		flat[i].Low = 2410
		flat[i].Time = candles[len(candles)-1].Time.Add(time.Duration(i+1) * 5 * time.Minute)
	}
	candles = append(candles, flat...)

	rows, err := engine.Compute(candles)
	require.NoError(t, err)
	assertNoNaN(t, rows)

	// Once the 14-period high/low range collapses to zero, %K repeats the
	// last value computed from a non-zero range.
	last := rows[len(rows)-1]
	secondToLast := rows[len(rows)-2]
	assert.Equal(t, secondToLast.StochK, last.StochK)
}

// TestEngine_Compute_Deterministic tests that recomputation over the same
// history reproduces identical values
func TestEngine_Compute_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 2400 + 5*math.Cos(float64(i)/7) + float64(i%3)
	}
	candles := makeCandles(closes...)

	first, err := engine.Compute(candles)
	require.NoError(t, err)
	second, err := engine.Compute(candles)
	require.NoError(t, err)

	for i := 50; i < len(first); i++ {
		assert.Equal(t, first[i], second[i], "row %d differs between runs", i)
	}
}

// TestEngine_Compute_ATR tests the true range aggregation against a hand
// computed window
func TestEngine_Compute_ATR(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ATRPeriod = 2
	engine := NewEngine(cfg)

	candles := []types.Candle{
		{Time: time.Unix(0, 0), High: 12, Low: 8, Close: 10, Volume: 1},
		{Time: time.Unix(60, 0), High: 15, Low: 9, Close: 14, Volume: 1},
		{Time: time.Unix(120, 0), High: 16, Low: 13, Close: 15, Volume: 1},
	}
	rows, err := engine.Compute(candles)
	require.NoError(t, err)

	// TR[1] = max(15-9, |15-10|, |9-10|) = 6
	// TR[2] = max(16-13, |16-14|, |13-14|) = 3
	assert.InDelta(t, 6.0, rows[1].ATR, 1e-9)
	assert.InDelta(t, 4.5, rows[2].ATR, 1e-9)
}

// TestEngine_Compute_OBV tests the cumulative signed volume with the tick
// volume fallback
func TestEngine_Compute_OBV(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	candles := []types.Candle{
		{Time: time.Unix(0, 0), High: 11, Low: 9, Close: 10, TickVolume: 100},
		{Time: time.Unix(60, 0), High: 12, Low: 10, Close: 11, TickVolume: 200},
		{Time: time.Unix(120, 0), High: 12, Low: 9, Close: 9, TickVolume: 300},
		{Time: time.Unix(180, 0), High: 13, Low: 9, Close: 12, TickVolume: 400},
	}
	rows, err := engine.Compute(candles)
	require.NoError(t, err)

	assert.InDelta(t, 200.0, rows[1].OBV, 1e-9)
	assert.InDelta(t, -100.0, rows[2].OBV, 1e-9)
	assert.InDelta(t, 300.0, rows[3].OBV, 1e-9)
}
