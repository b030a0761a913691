package backtest

import (
	"math"
	"time"

	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// tradingDaysPerYear annualizes the Sharpe ratio.
const tradingDaysPerYear = 252

// SimulatedTrade records one resolved trade. The sequence produced by a
// backtest run is append-only and ordered by entry time.
type SimulatedTrade struct {
	EntryTime    time.Time
	ExitTime     time.Time
	Signal       types.Signal
	EntryPrice   float64
	ExitPrice    float64
	StopLoss     float64
	TakeProfit   float64
	PositionSize float64
	PnL          float64
	BalanceAfter float64
}

// Results aggregates a backtest run.
type Results struct {
	StartBalance float64
	EndBalance   float64
	TotalTrades  int
	WinRate      float64
	AverageWin   float64
	AverageLoss  float64
	ProfitFactor float64
	SharpeRatio  float64
	MaxDrawdown  float64
	Trades       []SimulatedTrade
}

// Analyze computes the account-level performance metrics over an ordered
// trade sequence. riskFreeRate is annual; it is spread over
// tradingDaysPerYear periods for the Sharpe ratio.
func Analyze(trades []SimulatedTrade, startBalance, riskFreeRate float64) *Results {
	results := &Results{
		StartBalance: startBalance,
		EndBalance:   startBalance,
		TotalTrades:  len(trades),
		Trades:       trades,
	}
	if len(trades) == 0 {
		return results
	}
	results.EndBalance = trades[len(trades)-1].BalanceAfter

	var (
		winCount  int
		winSum    float64
		lossCount int
		lossSum   float64
	)
	for _, trade := range trades {
		if trade.PnL > 0 {
			winCount++
			winSum += trade.PnL
		} else {
			lossCount++
			lossSum += trade.PnL
		}
	}

	results.WinRate = float64(winCount) / float64(len(trades))
	if winCount > 0 {
		results.AverageWin = winSum / float64(winCount)
	}
	if lossCount > 0 {
		results.AverageLoss = lossSum / float64(lossCount)
	}
	if lossSum == 0 {
		results.ProfitFactor = math.Inf(1)
	} else {
		results.ProfitFactor = math.Abs(winSum / lossSum)
	}

	results.SharpeRatio = sharpeRatio(trades, riskFreeRate)
	results.MaxDrawdown = maxDrawdown(trades)
	return results
}

// sharpeRatio is sqrt(252) * mean(excess) / stddev(excess) over the PnL
// series, zero when volatility is zero.
func sharpeRatio(trades []SimulatedTrade, riskFreeRate float64) float64 {
	if len(trades) < 2 {
		return 0
	}

	perPeriod := riskFreeRate / tradingDaysPerYear
	mean := 0.0
	for _, trade := range trades {
		mean += trade.PnL - perPeriod
	}
	mean /= float64(len(trades))

	variance := 0.0
	for _, trade := range trades {
		excess := trade.PnL - perPeriod
		variance += (excess - mean) * (excess - mean)
	}
	std := math.Sqrt(variance / float64(len(trades)-1))
	if std == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * mean / std
}

// maxDrawdown is the largest fractional decline of the balance-after
// sequence from its running peak.
func maxDrawdown(trades []SimulatedTrade) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, trade := range trades {
		if trade.BalanceAfter > peak {
			peak = trade.BalanceAfter
		}
		if peak > 0 {
			if dd := (peak - trade.BalanceAfter) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
