package bybit

import (
	"context"
	"fmt"
	"time"
)

// KlineInterval is Bybit's wire encoding of a candle timeframe.
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval3m  KlineInterval = "3"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval2h  KlineInterval = "120"
	Interval4h  KlineInterval = "240"
	Interval1d  KlineInterval = "D"
)

var intervalByTimeframe = map[string]KlineInterval{
	"1m":  Interval1m,
	"3m":  Interval3m,
	"5m":  Interval5m,
	"15m": Interval15m,
	"30m": Interval30m,
	"1h":  Interval1h,
	"2h":  Interval2h,
	"4h":  Interval4h,
	"1d":  Interval1d,
}

// ParseInterval maps a human timeframe label ("1m", "5m", "1h") to the wire
// encoding.
func ParseInterval(timeframe string) (KlineInterval, error) {
	interval, ok := intervalByTimeframe[timeframe]
	if !ok {
		return "", fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	return interval, nil
}

// Kline is a single candlestick as reported by the exchange.
type Kline struct {
	StartTime  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     float64
	Turnover   float64
}

// KlineParams holds parameters for fetching kline data.
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string
	Interval KlineInterval
	Start    *time.Time
	End      *time.Time
	Limit    int           // max 1000, default 200
}

// GetKlines fetches candlestick data. The exchange reports newest first;
// the result is reversed into chronological order.
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	if params.Category == "" {
		params.Category = "linear"
	}
	if params.Limit == 0 {
		params.Limit = 200
	}
	if params.Limit > 1000 {
		params.Limit = 1000
	}

	reqParams := map[string]interface{}{
		"category": params.Category,
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"limit":    params.Limit,
	}
	if params.Start != nil {
		reqParams["start"] = params.Start.UnixMilli()
	}
	if params.End != nil {
		reqParams["end"] = params.End.UnixMilli()
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
	if err != nil {
		return nil, WrapAPIError("get klines", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := decodeResult(result, &klineResult); err != nil {
		return nil, WrapAPIError("get klines", err)
	}

	// Wire format per row: [startTime, open, high, low, close, volume, turnover]
	klines := make([]Kline, 0, len(klineResult.List))
	for i := len(klineResult.List) - 1; i >= 0; i-- {
		item := klineResult.List[i]
		if len(item) < 7 {
			continue
		}
		klines = append(klines, Kline{
			StartTime:  time.UnixMilli(parseInt64(item[0])),
			OpenPrice:  parseFloat64(item[1]),
			HighPrice:  parseFloat64(item[2]),
			LowPrice:   parseFloat64(item[3]),
			ClosePrice: parseFloat64(item[4]),
			Volume:     parseFloat64(item[5]),
			Turnover:   parseFloat64(item[6]),
		})
	}

	return klines, nil
}

// Ticker is the current quote for a symbol.
type Ticker struct {
	Symbol    string
	LastPrice float64
	Bid1Price float64
	Ask1Price float64
	Volume24h float64
	Time      time.Time
}

// GetTicker fetches the current ticker for a symbol.
func (c *Client) GetTicker(ctx context.Context, category, symbol string) (*Ticker, error) {
	if category == "" {
		category = "linear"
	}

	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return nil, WrapAPIError("get ticker", err)
	}

	var tickerResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
			Volume24h string `json:"volume24h"`
		} `json:"list"`
	}
	if err := decodeResult(result, &tickerResult); err != nil {
		return nil, WrapAPIError("get ticker", err)
	}
	if len(tickerResult.List) == 0 {
		return nil, fmt.Errorf("no ticker data for %s", symbol)
	}

	t := tickerResult.List[0]
	return &Ticker{
		Symbol:    t.Symbol,
		LastPrice: parseFloat64(t.LastPrice),
		Bid1Price: parseFloat64(t.Bid1Price),
		Ask1Price: parseFloat64(t.Ask1Price),
		Volume24h: parseFloat64(t.Volume24h),
		Time:      time.Now(),
	}, nil
}
