package reporting

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ducminhle1904/llm-trading-bot/internal/backtest"
)

type jsonTrade struct {
	EntryTime    time.Time `json:"entry_time"`
	ExitTime     time.Time `json:"exit_time"`
	Signal       string    `json:"signal"`
	EntryPrice   float64   `json:"entry_price"`
	ExitPrice    float64   `json:"exit_price"`
	StopLoss     float64   `json:"stop_loss"`
	TakeProfit   float64   `json:"take_profit"`
	PositionSize float64   `json:"position_size"`
	PnL          float64   `json:"pnl"`
	BalanceAfter float64   `json:"balance_after"`
}

type jsonReport struct {
	Symbol       string      `json:"symbol"`
	Timeframe    string      `json:"timeframe"`
	GeneratedAt  time.Time   `json:"generated_at"`
	StartBalance float64     `json:"start_balance"`
	EndBalance   float64     `json:"end_balance"`
	TotalTrades  int         `json:"total_trades"`
	WinRate      float64     `json:"win_rate"`
	AverageWin   float64     `json:"average_win"`
	AverageLoss  float64     `json:"average_loss"`
	ProfitFactor *float64    `json:"profit_factor"`
	SharpeRatio  *float64    `json:"sharpe_ratio"`
	MaxDrawdown  float64     `json:"max_drawdown"`
	Trades       []jsonTrade `json:"trades"`
}

// finiteOrNull guards ratio metrics before marshaling. A lossless run has
// an infinite profit factor, which encoding/json cannot encode, so
// non-finite values become JSON null.
func finiteOrNull(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// WriteResultsJSON writes the full results, trades included, as indented
// JSON at path.
func WriteResultsJSON(results *backtest.Results, symbol, timeframe, path string) error {
	report := jsonReport{
		Symbol:       symbol,
		Timeframe:    timeframe,
		GeneratedAt:  time.Now().UTC(),
		StartBalance: results.StartBalance,
		EndBalance:   results.EndBalance,
		TotalTrades:  results.TotalTrades,
		WinRate:      results.WinRate,
		AverageWin:   results.AverageWin,
		AverageLoss:  results.AverageLoss,
		ProfitFactor: finiteOrNull(results.ProfitFactor),
		SharpeRatio:  finiteOrNull(results.SharpeRatio),
		MaxDrawdown:  results.MaxDrawdown,
		Trades:       make([]jsonTrade, 0, len(results.Trades)),
	}
	for _, trade := range results.Trades {
		report.Trades = append(report.Trades, jsonTrade{
			EntryTime:    trade.EntryTime,
			ExitTime:     trade.ExitTime,
			Signal:       string(trade.Signal),
			EntryPrice:   trade.EntryPrice,
			ExitPrice:    trade.ExitPrice,
			StopLoss:     trade.StopLoss,
			TakeProfit:   trade.TakeProfit,
			PositionSize: trade.PositionSize,
			PnL:          trade.PnL,
			BalanceAfter: trade.BalanceAfter,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
