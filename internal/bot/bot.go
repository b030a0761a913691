package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ducminhle1904/llm-trading-bot/internal/config"
	"github.com/ducminhle1904/llm-trading-bot/internal/decision"
	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/exchange"
	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/internal/logger"
	"github.com/ducminhle1904/llm-trading-bot/internal/monitoring"
	"github.com/ducminhle1904/llm-trading-bot/internal/notifications"
	"github.com/ducminhle1904/llm-trading-bot/internal/risk"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// DecisionOracle proposes raw decisions for the current indicator windows.
type DecisionOracle interface {
	Propose(ctx context.Context, primary, secondary []indicators.Row) (string, error)
}

const cycleTimeout = 60 * time.Second

// LiveBot runs the decision cycle against a live market: fetch candles and
// account state, ask the oracle, validate, gate, size, submit.
type LiveBot struct {
	cfg     *config.Config
	gateway exchange.MarketGateway
	oracle  DecisionOracle

	indicatorEngine *indicators.Engine
	validator       *decision.Validator
	gate            *risk.Gate
	sizer           *risk.Sizer

	logger   *logger.Logger
	notifier notifications.Notifier
	health   *monitoring.HealthChecker

	mu          sync.Mutex
	running     bool
	stopChan    chan struct{}
	stopped     chan struct{}
	tradeDay    time.Time
	tradesToday int
}

// New creates a live bot. notifier may be nil.
func New(cfg *config.Config, gateway exchange.MarketGateway, oracle DecisionOracle,
	log *logger.Logger, notifier notifications.Notifier, health *monitoring.HealthChecker) *LiveBot {
	return &LiveBot{
		cfg:             cfg,
		gateway:         gateway,
		oracle:          oracle,
		indicatorEngine: indicators.NewEngine(indicators.DefaultConfig()),
		validator:       decision.NewValidator(),
		gate:            risk.NewGate(cfg.Risk, log),
		sizer:           risk.NewSizer(cfg.Risk),
		logger:          log,
		notifier:        notifier,
		health:          health,
		stopChan:        make(chan struct{}),
		stopped:         make(chan struct{}),
	}
}

// Start begins the trading loop. It returns immediately; the loop runs in
// its own goroutine until Stop is called.
func (bot *LiveBot) Start() error {
	bot.mu.Lock()
	if bot.running {
		bot.mu.Unlock()
		return fmt.Errorf("bot already running")
	}
	bot.running = true
	bot.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	account, err := bot.gateway.FetchAccount(ctx)
	if err != nil {
		bot.markStopped()
		return fmt.Errorf("failed to reach exchange: %w", err)
	}
	if bot.health != nil {
		bot.health.MarkConnected(true)
	}

	bot.printStartupInfo(account)
	bot.logger.Info("Starting trading loop for %s (%s/%s), cycle interval %s",
		bot.cfg.Trading.Symbol, bot.cfg.Trading.PrimaryTimeframe,
		bot.cfg.Trading.SecondaryTimeframe, bot.cfg.Trading.CycleInterval)
	fmt.Printf("📝 Trading logs: %s\n", bot.logger.GetLogPath())
	fmt.Printf("🔄 Bot is running... (trading activity logged to file)\n\n")

	go bot.tradingLoop()
	return nil
}

// Stop signals the trading loop and waits for it to exit.
func (bot *LiveBot) Stop() {
	bot.mu.Lock()
	if !bot.running {
		bot.mu.Unlock()
		return
	}
	bot.running = false
	bot.mu.Unlock()

	close(bot.stopChan)
	<-bot.stopped
	bot.logger.Info("Trading loop stopped")
}

func (bot *LiveBot) markStopped() {
	bot.mu.Lock()
	bot.running = false
	bot.mu.Unlock()
	close(bot.stopped)
}

func (bot *LiveBot) tradingLoop() {
	defer bot.markStopped()

	ticker := time.NewTicker(bot.cfg.Trading.CycleInterval)
	defer ticker.Stop()

	bot.runCycle()
	for {
		select {
		case <-ticker.C:
			bot.runCycle()
		case <-bot.stopChan:
			return
		}
	}
}

// runCycle performs one decision cycle. Failures are logged and recorded;
// only the surrounding process decides whether to halt.
func (bot *LiveBot) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			bot.logger.Error("Panic in trading cycle: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	outcome := "ok"
	if err := bot.cycle(ctx); err != nil {
		outcome = "error"
		bot.logger.LogError("Trading cycle failed", err)
		if bot.health != nil {
			bot.health.MarkError(err)
		}

		var botErr *boterrors.BotError
		if errors.As(err, &botErr) {
			monitoring.RecordError(string(botErr.Category))
			if botErr.IsFatal() && bot.notifier != nil {
				bot.notifier.SendAlert("error", fmt.Sprintf("Fatal error, intervention needed:\n%v", err))
			}
		} else {
			monitoring.RecordError("unknown")
		}
	}
	monitoring.RecordCycle(bot.cfg.Trading.Symbol, outcome)
}

func (bot *LiveBot) cycle(ctx context.Context) error {
	symbol := bot.cfg.Trading.Symbol
	lookback := bot.cfg.Trading.LookbackCandles

	// One immutable snapshot per cycle: candles for both timeframes, the
	// current tick, and the account state.
	primary, err := bot.gateway.FetchCandles(ctx, bot.cfg.Trading.PrimaryTimeframe, lookback)
	if err != nil {
		return err
	}
	secondary, err := bot.gateway.FetchCandles(ctx, bot.cfg.Trading.SecondaryTimeframe, lookback)
	if err != nil {
		return err
	}
	tick, err := bot.gateway.FetchTick(ctx)
	if err != nil {
		return err
	}
	account, err := bot.gateway.FetchAccount(ctx)
	if err != nil {
		return err
	}
	positions, err := bot.gateway.FetchPositions(ctx)
	if err != nil {
		return err
	}

	primary = appendTick(primary, tick)
	monitoring.UpdatePrice(symbol, tick.Last)
	monitoring.UpdateAccount(symbol, account.Balance, account.Equity)
	if bot.health != nil {
		bot.health.MarkCycle(tick.Last)
	}
	bot.logger.LogAccountStatus(account.Balance, account.Equity, account.Margin, len(positions))

	primaryRows, err := bot.indicatorEngine.Compute(primary)
	if err != nil {
		return err
	}
	secondaryRows, err := bot.indicatorEngine.Compute(secondary)
	if err != nil {
		return err
	}

	response, err := bot.oracle.Propose(ctx, primaryRows, secondaryRows)
	if err != nil {
		return err
	}

	d, err := bot.validator.Validate(response, primaryRows, secondaryRows)
	if err != nil {
		if rej, ok := decision.AsRejection(err); ok {
			status := "rejected"
			if rej.Reason == decision.ReasonInsufficientData {
				status = "insufficient_data"
			}
			monitoring.RecordDecision(symbol, status)
			monitoring.RecordRejection(symbol, string(rej.Reason))
			bot.logger.LogRejection(string(rej.Reason), rej.Detail)
			return nil
		}
		return err
	}
	monitoring.RecordDecision(symbol, "accepted")

	marketData := map[string][]indicators.Row{
		bot.cfg.Trading.PrimaryTimeframe:   primaryRows,
		bot.cfg.Trading.SecondaryTimeframe: secondaryRows,
	}
	if !bot.gate.CanOpenMoreTrades(account, positions, marketData) {
		bot.logger.LogRiskBlock("account limits")
		return nil
	}
	if !bot.gate.ShouldExecuteTrade(d, positions) {
		bot.logger.LogRiskBlock(fmt.Sprintf("open %s position already exists", d.Signal))
		return nil
	}
	if !bot.underDailyTradeLimit() {
		bot.logger.LogRiskBlock(fmt.Sprintf("daily trade limit of %d reached", bot.cfg.Trading.MaxDailyTrades))
		return nil
	}

	entryPrice := tick.Last
	adjusted := d
	adjusted.StopLoss = bot.sizer.AdjustStopLoss(entryPrice, d.StopLoss, d.TakeProfit)
	riskAmount := account.Balance * bot.cfg.Risk.MaxRiskPerTrade
	size := bot.sizer.CalculatePositionSize(account.Balance, riskAmount, math.Abs(entryPrice-adjusted.StopLoss))
	if size <= 0 {
		bot.logger.Warning("Position size came out zero, skipping trade")
		return nil
	}

	bot.printDecision(adjusted, entryPrice, size)
	bot.logger.LogDecision(string(adjusted.Signal), entryPrice, adjusted.StopLoss, adjusted.TakeProfit, adjusted.Explanation)

	orderID, err := bot.gateway.SubmitBracketOrder(ctx, adjusted, size)
	if err != nil {
		return err
	}
	bot.recordDailyTrade()

	bot.logger.LogTradeExecution(string(adjusted.Signal), orderID, size, entryPrice, adjusted.StopLoss, adjusted.TakeProfit)
	monitoring.RecordTrade(symbol, string(adjusted.Signal), size)
	if bot.notifier != nil {
		if err := bot.notifier.SendTradeAlert(string(adjusted.Signal), symbol, orderID,
			size, entryPrice, adjusted.StopLoss, adjusted.TakeProfit); err != nil {
			bot.logger.Warning("Notification failed: %v", err)
		}
	}

	return nil
}

// appendTick joins the current quote to the window as a forming candle so
// the oracle sees the price as of now, not just the last close.
func appendTick(candles []types.Candle, tick types.Tick) []types.Candle {
	if tick.Last == 0 {
		return candles
	}
	if n := len(candles); n > 0 && !tick.Time.After(candles[n-1].Time) {
		return candles
	}
	// Tick.Volume is the rolling 24h turnover, not per-bar volume, so the
	// forming candle carries none.
	return append(candles, types.Candle{
		Time:  tick.Time,
		Open:  tick.Last,
		High:  tick.Last,
		Low:   tick.Last,
		Close: tick.Last,
	})
}

func (bot *LiveBot) underDailyTradeLimit() bool {
	if bot.cfg.Trading.MaxDailyTrades <= 0 {
		return true
	}
	bot.mu.Lock()
	defer bot.mu.Unlock()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !bot.tradeDay.Equal(today) {
		return true
	}
	return bot.tradesToday < bot.cfg.Trading.MaxDailyTrades
}

func (bot *LiveBot) recordDailyTrade() {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !bot.tradeDay.Equal(today) {
		bot.tradeDay = today
		bot.tradesToday = 0
	}
	bot.tradesToday++
}
