package bybit

import (
	"context"
	"fmt"
	"time"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "Buy"
	OrderSideSell OrderSide = "Sell"
)

// OrderType is the execution style of an order.
type OrderType string

const (
	OrderTypeMarket OrderType = "Market"
	OrderTypeLimit  OrderType = "Limit"
)

// Order is the exchange's acknowledgement of a placed order.
type Order struct {
	OrderID     string
	OrderLinkID string
}

// BracketOrderParams describes a market entry with an attached take-profit
// and stop-loss.
type BracketOrderParams struct {
	Category    string // defaults to "linear"
	Symbol      string
	Side        OrderSide
	Qty         string
	TakeProfit  string
	StopLoss    string
	OrderLinkID string
}

// PlaceBracketOrder places a market order with exchange-side TP/SL levels.
// The quantity is snapped to the instrument's lot step before submission.
func (c *Client) PlaceBracketOrder(ctx context.Context, params BracketOrderParams) (*Order, error) {
	if params.Category == "" {
		params.Category = "linear"
	}
	if params.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if params.Side != OrderSideBuy && params.Side != OrderSideSell {
		return nil, fmt.Errorf("invalid side %q", params.Side)
	}
	if params.Qty == "" {
		return nil, fmt.Errorf("qty is required")
	}

	qty, err := c.instruments.SnapQuantity(ctx, params.Category, params.Symbol, params.Qty)
	if err != nil {
		return nil, fmt.Errorf("quantity validation failed: %w", err)
	}

	apiParams := map[string]interface{}{
		"category":  params.Category,
		"symbol":    params.Symbol,
		"side":      string(params.Side),
		"orderType": string(OrderTypeMarket),
		"qty":       qty,
	}
	if params.TakeProfit != "" {
		apiParams["takeProfit"] = params.TakeProfit
	}
	if params.StopLoss != "" {
		apiParams["stopLoss"] = params.StopLoss
	}
	if params.OrderLinkID != "" {
		apiParams["orderLinkId"] = params.OrderLinkID
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(apiParams).PlaceOrder(ctx)
	if err != nil {
		return nil, WrapAPIError("place order", err)
	}

	var orderResult struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	}
	if err := decodeResult(result, &orderResult); err != nil {
		return nil, WrapAPIError("place order", err)
	}

	return &Order{OrderID: orderResult.OrderID, OrderLinkID: orderResult.OrderLinkID}, nil
}

// PositionInfo is an open derivatives position.
type PositionInfo struct {
	Symbol        string
	Side          string // "Buy", "Sell" or "" when flat
	Size          float64
	EntryPrice    float64
	MarkPrice     float64
	UnrealisedPnl float64
	TakeProfit    float64
	StopLoss      float64
	UpdatedTime   time.Time
}

// GetPositions retrieves open positions, optionally filtered by symbol.
// Flat entries reported by the exchange are dropped.
func (c *Client) GetPositions(ctx context.Context, category, symbol string) ([]PositionInfo, error) {
	if category == "" {
		category = "linear"
	}

	params := map[string]interface{}{
		"category": category,
	}
	if symbol != "" {
		params["symbol"] = symbol
	} else {
		params["settleCoin"] = "USDT"
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetPositionList(ctx)
	if err != nil {
		return nil, WrapAPIError("get positions", err)
	}

	var positionResult struct {
		List []struct {
			Symbol        string `json:"symbol"`
			Side          string `json:"side"`
			Size          string `json:"size"`
			AvgPrice      string `json:"avgPrice"`
			MarkPrice     string `json:"markPrice"`
			UnrealisedPnl string `json:"unrealisedPnl"`
			TakeProfit    string `json:"takeProfit"`
			StopLoss      string `json:"stopLoss"`
			UpdatedTime   string `json:"updatedTime"`
		} `json:"list"`
	}
	if err := decodeResult(result, &positionResult); err != nil {
		return nil, WrapAPIError("get positions", err)
	}

	var positions []PositionInfo
	for _, p := range positionResult.List {
		size := parseFloat64(p.Size)
		if size == 0 {
			continue
		}
		positions = append(positions, PositionInfo{
			Symbol:        p.Symbol,
			Side:          p.Side,
			Size:          size,
			EntryPrice:    parseFloat64(p.AvgPrice),
			MarkPrice:     parseFloat64(p.MarkPrice),
			UnrealisedPnl: parseFloat64(p.UnrealisedPnl),
			TakeProfit:    parseFloat64(p.TakeProfit),
			StopLoss:      parseFloat64(p.StopLoss),
			UpdatedTime:   parseTimestamp(p.UpdatedTime),
		})
	}

	return positions, nil
}
