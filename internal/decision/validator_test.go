package decision

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// trendRows builds an indicator series whose trend classification is fixed:
// slope > 0 with adx above threshold reads as up, slope < 0 as down, and a
// low adx always reads as neutral.
func trendRows(closePrice, atr, slope, adx float64) []indicators.Row {
	rows := make([]indicators.Row, 40)
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = indicators.Row{
			Candle: types.Candle{
				Time:  base.Add(time.Duration(i) * time.Minute),
				Close: closePrice,
			},
			SMA20: closePrice + slope*float64(i),
			ADX:   adx,
			ATR:   atr,
		}
	}
	return rows
}

func buyResponse(stop, take float64) string {
	return fmt.Sprintf("Signal: buy\nStop Loss: %.2f\nTake Profit: %.2f\nExplanation: test", stop, take)
}

func sellResponse(stop, take float64) string {
	return fmt.Sprintf("Signal: sell\nStop Loss: %.2f\nTake Profit: %.2f\nExplanation: test", stop, take)
}

// TestValidator_Validate_AcceptsBuy tests the full accept path for a buy
func TestValidator_Validate_AcceptsBuy(t *testing.T) {
	v := NewValidator()
	primary := trendRows(2400, 2.0, 1.0, 40)

	d, err := v.Validate(buyResponse(2395, 2410), primary, nil)
	require.NoError(t, err)
	assert.Equal(t, types.SignalBuy, d.Signal)
	assert.Equal(t, 2395.0, d.StopLoss)
	assert.Equal(t, 2410.0, d.TakeProfit)
}

// TestValidator_Validate_PriceOrdering tests the §buy/sell ordering invariant
func TestValidator_Validate_PriceOrdering(t *testing.T) {
	v := NewValidator()
	primary := trendRows(2400, 2.0, 1.0, 40)

	tests := []struct {
		name     string
		response string
	}{
		{"buy with stop above price", buyResponse(2405, 2410)},
		{"buy with take profit below price", buyResponse(2395, 2398)},
		{"sell with stop below price", sellResponse(2395, 2390)},
		{"sell with take profit above price", sellResponse(2410, 2405)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.response, primary, nil)
			rej, ok := AsRejection(err)
			require.True(t, ok, "expected a rejection, got %v", err)
			assert.Equal(t, ReasonInvalidPriceOrdering, rej.Reason)
		})
	}
}

// TestValidator_Validate_AcceptsSell tests the mirrored sell ordering
func TestValidator_Validate_AcceptsSell(t *testing.T) {
	v := NewValidator()
	primary := trendRows(2400, 2.0, -1.0, 40)

	d, err := v.Validate(sellResponse(2405, 2390), primary, nil)
	require.NoError(t, err)
	assert.Equal(t, types.SignalSell, d.Signal)
}

// TestValidator_Validate_StopTooClose tests the ATR minimum distance rule
func TestValidator_Validate_StopTooClose(t *testing.T) {
	v := NewValidator()
	primary := trendRows(2400, 10.0, 1.0, 40)

	_, err := v.Validate(buyResponse(2395, 2420), primary, nil)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonStopTooClose, rej.Reason)
}

// TestValidator_Validate_TrendAlignment tests the multi-timeframe gate
func TestValidator_Validate_TrendAlignment(t *testing.T) {
	v := NewValidator()

	up := trendRows(2400, 2.0, 1.0, 40)
	down := trendRows(2400, 2.0, -1.0, 40)
	neutral := trendRows(2400, 2.0, 0.0, 10)

	// A buy with both timeframes trending up passes.
	_, err := v.Validate(buyResponse(2395, 2410), up, up)
	assert.NoError(t, err)

	// A neutral secondary does not block a buy.
	_, err = v.Validate(buyResponse(2395, 2410), up, neutral)
	assert.NoError(t, err)

	// A secondary downtrend blocks a buy.
	_, err = v.Validate(buyResponse(2395, 2410), up, down)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonTrendMisaligned, rej.Reason)

	// A buy against a primary downtrend is rejected outright.
	_, err = v.Validate(buyResponse(2395, 2410), down, up)
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonTrendMisaligned, rej.Reason)

	// A sell needs a primary downtrend and a non-up secondary.
	_, err = v.Validate(sellResponse(2405, 2390), down, neutral)
	assert.NoError(t, err)
	_, err = v.Validate(sellResponse(2405, 2390), down, up)
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonTrendMisaligned, rej.Reason)
}

// TestValidator_Validate_InsufficientData tests that the explicit opt-out is
// surfaced as its own recoverable reason
func TestValidator_Validate_InsufficientData(t *testing.T) {
	v := NewValidator()
	primary := trendRows(2400, 2.0, 1.0, 40)

	_, err := v.Validate("Insufficient data to make a trading decision.", primary, nil)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInsufficientData, rej.Reason)
}

// TestValidator_Validate_MalformedSignal tests that off-vocabulary signals
// are malformed, not ordering failures
func TestValidator_Validate_MalformedSignal(t *testing.T) {
	v := NewValidator()
	primary := trendRows(2400, 2.0, 1.0, 40)

	_, err := v.Validate("Signal: hold\nStop Loss: 2395\nTake Profit: 2410\nExplanation: test", primary, nil)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonMalformed, rej.Reason)
}

// TestValidator_Validate_EmptyPrimary tests that missing market data is a
// data error, not a decision rejection
func TestValidator_Validate_EmptyPrimary(t *testing.T) {
	v := NewValidator()

	_, err := v.Validate(buyResponse(2395, 2410), nil, nil)
	require.Error(t, err)
	_, ok := AsRejection(err)
	assert.False(t, ok)
}
