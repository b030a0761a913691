package bybit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
)

// LotConstraints are the order quantity rules for one instrument.
type LotConstraints struct {
	MinOrderQty float64
	MaxOrderQty float64
	QtyStep     float64
}

// InstrumentCache caches per-symbol lot constraints. Entries expire after
// cacheTTL and are refetched on the next use.
type InstrumentCache struct {
	client *Client

	mu        sync.RWMutex
	entries   map[string]LotConstraints
	fetchedAt map[string]time.Time
}

const instrumentCacheTTL = time.Hour

// NewInstrumentCache creates an empty cache bound to a client.
func NewInstrumentCache(client *Client) *InstrumentCache {
	return &InstrumentCache{
		client:    client,
		entries:   make(map[string]LotConstraints),
		fetchedAt: make(map[string]time.Time),
	}
}

// Constraints returns the lot constraints for a symbol, fetching them if
// the cache entry is missing or stale.
func (ic *InstrumentCache) Constraints(ctx context.Context, category, symbol string) (LotConstraints, error) {
	ic.mu.RLock()
	constraints, ok := ic.entries[symbol]
	fresh := ok && time.Since(ic.fetchedAt[symbol]) < instrumentCacheTTL
	ic.mu.RUnlock()
	if fresh {
		return constraints, nil
	}

	constraints, err := ic.fetch(ctx, category, symbol)
	if err != nil {
		return LotConstraints{}, err
	}

	ic.mu.Lock()
	ic.entries[symbol] = constraints
	ic.fetchedAt[symbol] = time.Now()
	ic.mu.Unlock()

	return constraints, nil
}

// SnapQuantity clamps a quantity string to the instrument's min/max and
// rounds it to the lot step.
func (ic *InstrumentCache) SnapQuantity(ctx context.Context, category, symbol, qty string) (string, error) {
	constraints, err := ic.Constraints(ctx, category, symbol)
	if err != nil {
		return "", err
	}

	value, err := strconv.ParseFloat(qty, 64)
	if err != nil {
		return "", fmt.Errorf("invalid quantity %q: %w", qty, err)
	}

	snapped := snapToConstraints(value, constraints)
	return strconv.FormatFloat(snapped, 'f', -1, 64), nil
}

func snapToConstraints(qty float64, c LotConstraints) float64 {
	if c.MinOrderQty > 0 && qty < c.MinOrderQty {
		qty = c.MinOrderQty
	}
	if c.MaxOrderQty > 0 && qty > c.MaxOrderQty {
		qty = c.MaxOrderQty
	}
	if c.QtyStep > 0 {
		qty = math.Round(qty/c.QtyStep) * c.QtyStep
		// Kill float residue by rounding to the step's decimal precision.
		precision := int(math.Abs(math.Log10(c.QtyStep)))
		multiplier := math.Pow(10, float64(precision))
		qty = math.Round(qty*multiplier) / multiplier
	}
	return qty
}

func (ic *InstrumentCache) fetch(ctx context.Context, category, symbol string) (LotConstraints, error) {
	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
	}

	result, err := ic.client.httpClient.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
	if err != nil {
		return LotConstraints{}, WrapAPIError("get instrument info", err)
	}

	var instrumentResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol        string `json:"symbol"`
			LotSizeFilter struct {
				MinOrderQty string `json:"minOrderQty"`
				MaxOrderQty string `json:"maxOrderQty"`
				QtyStep     string `json:"qtyStep"`
			} `json:"lotSizeFilter"`
		} `json:"list"`
	}
	if err := decodeResult(result, &instrumentResult); err != nil {
		return LotConstraints{}, WrapAPIError("get instrument info", err)
	}

	for _, item := range instrumentResult.List {
		if item.Symbol == symbol {
			return LotConstraints{
				MinOrderQty: parseFloat64(item.LotSizeFilter.MinOrderQty),
				MaxOrderQty: parseFloat64(item.LotSizeFilter.MaxOrderQty),
				QtyStep:     parseFloat64(item.LotSizeFilter.QtyStep),
			}, nil
		}
	}

	return LotConstraints{}, fmt.Errorf("instrument %s not found", symbol)
}
