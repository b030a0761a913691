package reporting

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/llm-trading-bot/internal/backtest"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

func sampleResults() *backtest.Results {
	entry := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	return &backtest.Results{
		StartBalance: 200,
		EndBalance:   204,
		TotalTrades:  1,
		WinRate:      1,
		AverageWin:   4,
		ProfitFactor: 4,
		Trades: []backtest.SimulatedTrade{
			{
				EntryTime:    entry,
				ExitTime:     entry.Add(25 * time.Minute),
				Signal:       types.SignalBuy,
				EntryPrice:   100,
				ExitPrice:    120,
				StopLoss:     90,
				TakeProfit:   120,
				PositionSize: 0.2,
				PnL:          4,
				BalanceAfter: 204,
			},
		},
	}
}

func TestWriteResultsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.json")
	require.NoError(t, WriteResultsJSON(sampleResults(), "BTCUSDT", "5m", path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "BTCUSDT", report.Symbol)
	assert.Equal(t, "5m", report.Timeframe)
	assert.Equal(t, 204.0, report.EndBalance)
	require.Len(t, report.Trades, 1)
	assert.Equal(t, "buy", report.Trades[0].Signal)
	require.NotNil(t, report.ProfitFactor)
	assert.Equal(t, 4.0, *report.ProfitFactor)
}

func TestWriteResultsJSON_LosslessRun(t *testing.T) {
	// A run without losing trades has an infinite profit factor, which
	// encoding/json refuses to encode as a number.
	results := sampleResults()
	results.ProfitFactor = math.Inf(1)
	results.SharpeRatio = math.NaN()

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteResultsJSON(results, "BTCUSDT", "5m", path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Nil(t, report.ProfitFactor)
	assert.Nil(t, report.SharpeRatio)
	assert.Equal(t, 204.0, report.EndBalance)
}

func TestWriteTradesXLSX_LosslessRun(t *testing.T) {
	results := sampleResults()
	results.ProfitFactor = math.Inf(1)

	path := filepath.Join(t.TempDir(), "trades.xlsx")
	require.NoError(t, WriteTradesXLSX(results, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	value, err := fx.GetCellValue("Summary", "B8")
	require.NoError(t, err)
	assert.Equal(t, "∞", value)
}

func TestWriteTradesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.xlsx")
	require.NoError(t, WriteTradesXLSX(sampleResults(), path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	signal, err := fx.GetCellValue("Trades", "C2")
	require.NoError(t, err)
	assert.Equal(t, "buy", signal)

	metric, err := fx.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Initial Balance", metric)
}

func TestPrintSummaryAndTrades(t *testing.T) {
	// Console output only; just exercise the render paths.
	PrintSummary(sampleResults(), "BTCUSDT", "5m")
	PrintTrades(sampleResults(), 10)
	PrintTrades(&backtest.Results{}, 10)
}
