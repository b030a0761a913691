package backtest

import (
	"context"
	"math"

	"github.com/ducminhle1904/llm-trading-bot/internal/decision"
	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/internal/risk"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// DecisionOracle proposes raw decisions for an indicator window. The live
// bot and the backtester share implementations through this interface.
type DecisionOracle interface {
	Propose(ctx context.Context, primary, secondary []indicators.Row) (string, error)
}

// Logger is the subset of the file logger the engine reports through.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})    {}
func (nopLogger) Warning(string, ...interface{}) {}

// Engine replays a candle series through the full decision pipeline:
// indicator computation over a sliding lookback window, an oracle proposal
// per window, validation, stop adjustment, sizing, and trade simulation
// against the candles that follow the window.
type Engine struct {
	initialBalance float64
	lookback       int
	riskFreeRate   float64

	indicatorEngine *indicators.Engine
	validator       *decision.Validator
	sizer           *risk.Sizer
	riskCfg         risk.Config
	oracle          DecisionOracle
	log             Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger attaches a logger for per-window diagnostics.
func WithLogger(log Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRiskFreeRate overrides the annual risk-free rate used by the Sharpe
// ratio.
func WithRiskFreeRate(rate float64) Option {
	return func(e *Engine) { e.riskFreeRate = rate }
}

// WithLookback overrides the sliding window size.
func WithLookback(lookback int) Option {
	return func(e *Engine) { e.lookback = lookback }
}

// NewEngine creates a backtest engine.
func NewEngine(initialBalance float64, indicatorCfg indicators.Config, riskCfg risk.Config, oracle DecisionOracle, opts ...Option) *Engine {
	e := &Engine{
		initialBalance:  initialBalance,
		lookback:        50,
		riskFreeRate:    0.02,
		indicatorEngine: indicators.NewEngine(indicatorCfg),
		validator:       decision.NewValidator(),
		sizer:           risk.NewSizer(riskCfg),
		riskCfg:         riskCfg,
		oracle:          oracle,
		log:             nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run replays the series and returns aggregated results. Rejected decisions
// and oracle failures skip the window; only an unusably short series is an
// error.
func (e *Engine) Run(ctx context.Context, candles []types.Candle) (*Results, error) {
	if len(candles) <= e.lookback {
		return nil, boterrors.NewDataError("backtest", "run", "candle series shorter than lookback window")
	}

	balance := e.initialBalance
	var trades []SimulatedTrade

	for i := 0; i+e.lookback < len(candles); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		window := candles[i : i+e.lookback]
		rows, err := e.indicatorEngine.Compute(window)
		if err != nil {
			return nil, err
		}

		response, err := e.oracle.Propose(ctx, rows, nil)
		if err != nil {
			e.log.Warning("oracle proposal failed at window %d: %v", i, err)
			continue
		}

		d, err := e.validator.Validate(response, rows, nil)
		if err != nil {
			if rej, ok := decision.AsRejection(err); ok {
				e.log.Info("window %d: %s", i, rej)
				continue
			}
			return nil, err
		}

		entryPrice := window[len(window)-1].Close
		stopLoss := e.sizer.AdjustStopLoss(entryPrice, d.StopLoss, d.TakeProfit)
		riskAmount := balance * e.riskCfg.MaxRiskPerTrade
		size := e.sizer.CalculatePositionSize(balance, riskAmount, math.Abs(entryPrice-stopLoss))
		if size == 0 {
			e.log.Warning("window %d: zero position size, skipping", i)
			continue
		}

		simulated := d
		simulated.StopLoss = stopLoss
		future := candles[i+e.lookback:]
		exitPrice, exitTime := SimulateExit(future, simulated, entryPrice)

		pnl := (exitPrice - entryPrice) * size
		if d.Signal == types.SignalSell {
			pnl = (entryPrice - exitPrice) * size
		}
		balance += pnl

		trades = append(trades, SimulatedTrade{
			EntryTime:    window[len(window)-1].Time,
			ExitTime:     exitTime,
			Signal:       d.Signal,
			EntryPrice:   entryPrice,
			ExitPrice:    exitPrice,
			StopLoss:     stopLoss,
			TakeProfit:   d.TakeProfit,
			PositionSize: size,
			PnL:          pnl,
			BalanceAfter: balance,
		})
	}

	return Analyze(trades, e.initialBalance, e.riskFreeRate), nil
}
