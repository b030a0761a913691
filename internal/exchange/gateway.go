package exchange

import (
	"context"
	"fmt"
	"strconv"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/exchange/bybit"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// MarketGateway is the venue surface the trading cycle runs against.
type MarketGateway interface {
	// FetchCandles returns up to count candles for a timeframe in
	// chronological order.
	FetchCandles(ctx context.Context, timeframe string, count int) ([]types.Candle, error)
	// FetchTick returns the current quote.
	FetchTick(ctx context.Context) (types.Tick, error)
	// FetchAccount returns the account totals.
	FetchAccount(ctx context.Context) (types.AccountSnapshot, error)
	// FetchPositions returns the open positions for the gateway's symbol.
	FetchPositions(ctx context.Context) ([]types.Position, error)
	// SubmitBracketOrder places a market order with the decision's stop and
	// take-profit attached, returning the venue order ID.
	SubmitBracketOrder(ctx context.Context, decision types.TradingDecision, size float64) (string, error)
}

// BybitGateway adapts the Bybit client to the MarketGateway surface for a
// single linear perpetual symbol.
type BybitGateway struct {
	client   *bybit.Client
	symbol   string
	category string
}

// NewBybitGateway creates a gateway bound to one symbol.
func NewBybitGateway(client *bybit.Client, symbol string) *BybitGateway {
	return &BybitGateway{
		client:   client,
		symbol:   symbol,
		category: "linear",
	}
}

// Symbol returns the instrument this gateway trades.
func (g *BybitGateway) Symbol() string {
	return g.symbol
}

// FetchCandles implements MarketGateway.
func (g *BybitGateway) FetchCandles(ctx context.Context, timeframe string, count int) ([]types.Candle, error) {
	interval, err := bybit.ParseInterval(timeframe)
	if err != nil {
		return nil, boterrors.NewConfigurationError("exchange", "fetch candles", err.Error())
	}

	var klines []bybit.Kline
	err = g.client.Retry(ctx, func() error {
		var callErr error
		klines, callErr = g.client.GetKlines(ctx, bybit.KlineParams{
			Category: g.category,
			Symbol:   g.symbol,
			Interval: interval,
			Limit:    count,
		})
		return callErr
	})
	if err != nil {
		return nil, g.categorize(err, "fetch candles")
	}

	candles := make([]types.Candle, len(klines))
	for i, k := range klines {
		candles[i] = types.Candle{
			Time:   k.StartTime,
			Open:   k.OpenPrice,
			High:   k.HighPrice,
			Low:    k.LowPrice,
			Close:  k.ClosePrice,
			Volume: k.Volume,
		}
	}
	return candles, nil
}

// FetchTick implements MarketGateway.
func (g *BybitGateway) FetchTick(ctx context.Context) (types.Tick, error) {
	var ticker *bybit.Ticker
	err := g.client.Retry(ctx, func() error {
		var callErr error
		ticker, callErr = g.client.GetTicker(ctx, g.category, g.symbol)
		return callErr
	})
	if err != nil {
		return types.Tick{}, g.categorize(err, "fetch tick")
	}

	return types.Tick{
		Time:   ticker.Time,
		Bid:    ticker.Bid1Price,
		Ask:    ticker.Ask1Price,
		Last:   ticker.LastPrice,
		Volume: ticker.Volume24h,
	}, nil
}

// FetchAccount implements MarketGateway.
func (g *BybitGateway) FetchAccount(ctx context.Context) (types.AccountSnapshot, error) {
	var wallet *bybit.WalletSnapshot
	err := g.client.Retry(ctx, func() error {
		var callErr error
		wallet, callErr = g.client.GetWalletSnapshot(ctx, bybit.AccountTypeUnified)
		return callErr
	})
	if err != nil {
		return types.AccountSnapshot{}, g.categorize(err, "fetch account")
	}

	return types.AccountSnapshot{
		Balance: wallet.TotalWalletBalance,
		Equity:  wallet.TotalEquity,
		Margin:  wallet.TotalInitialMargin,
	}, nil
}

// FetchPositions implements MarketGateway.
func (g *BybitGateway) FetchPositions(ctx context.Context) ([]types.Position, error) {
	var infos []bybit.PositionInfo
	err := g.client.Retry(ctx, func() error {
		var callErr error
		infos, callErr = g.client.GetPositions(ctx, g.category, g.symbol)
		return callErr
	})
	if err != nil {
		return nil, g.categorize(err, "fetch positions")
	}

	positions := make([]types.Position, 0, len(infos))
	for _, info := range infos {
		direction := types.SignalBuy
		if info.Side == string(bybit.OrderSideSell) {
			direction = types.SignalSell
		}
		positions = append(positions, types.Position{
			Symbol:    info.Symbol,
			Direction: direction,
			Size:      info.Size,
			AvgPrice:  info.EntryPrice,
		})
	}
	return positions, nil
}

// SubmitBracketOrder implements MarketGateway. Order placement is not
// retried; a timed-out submit may still have filled.
func (g *BybitGateway) SubmitBracketOrder(ctx context.Context, decision types.TradingDecision, size float64) (string, error) {
	if !decision.Signal.Valid() {
		return "", boterrors.NewValidationError("exchange", "submit order",
			fmt.Sprintf("invalid signal %q", decision.Signal))
	}
	if size <= 0 {
		return "", boterrors.NewValidationError("exchange", "submit order", "size must be positive")
	}

	side := bybit.OrderSideBuy
	if decision.Signal == types.SignalSell {
		side = bybit.OrderSideSell
	}

	order, err := g.client.PlaceBracketOrder(ctx, bybit.BracketOrderParams{
		Category:   g.category,
		Symbol:     g.symbol,
		Side:       side,
		Qty:        strconv.FormatFloat(size, 'f', -1, 64),
		TakeProfit: strconv.FormatFloat(decision.TakeProfit, 'f', -1, 64),
		StopLoss:   strconv.FormatFloat(decision.StopLoss, 'f', -1, 64),
	})
	if err != nil {
		return "", g.categorize(err, "submit order")
	}

	return order.OrderID, nil
}

// categorize maps venue errors onto the bot error taxonomy.
func (g *BybitGateway) categorize(err error, operation string) error {
	switch {
	case bybit.IsAuthenticationError(err):
		return boterrors.NewCredentialsError("exchange", operation, err.Error())
	case bybit.IsInsufficientBalanceError(err):
		return boterrors.NewOrderError("exchange", operation, err).WithRetryable(false)
	case bybit.IsRetryableError(err):
		return boterrors.WrapError(err, boterrors.ErrorCategoryTemporary, "exchange", operation)
	default:
		return boterrors.CategorizeError(err, "exchange", operation)
	}
}
