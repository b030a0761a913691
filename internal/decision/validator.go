package decision

import (
	"errors"
	"fmt"
	"math"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// RejectReason identifies why a proposed decision was turned away. Every
// rejection is recoverable: the cycle simply produces no trade.
type RejectReason string

const (
	ReasonMalformed            RejectReason = "malformed_decision"
	ReasonInsufficientData     RejectReason = "insufficient_data"
	ReasonInvalidPriceOrdering RejectReason = "invalid_price_ordering"
	ReasonStopTooClose         RejectReason = "stop_too_close"
	ReasonTrendMisaligned      RejectReason = "trend_misaligned"
)

// Rejection is the non-fatal result of a failed validation.
type Rejection struct {
	Reason RejectReason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("decision rejected: %s", r.Reason)
	}
	return fmt.Sprintf("decision rejected: %s (%s)", r.Reason, r.Detail)
}

// AsRejection unwraps a validation rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// Validator turns raw oracle output into a well-formed TradingDecision or a
// rejection. It is stateless apart from configuration and safe to share.
type Validator struct{}

// NewValidator creates a decision validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate parses the oracle response and checks it against the latest
// market state. The primary series drives the reference price, the ATR
// minimum stop distance and the primary trend; the secondary series, when
// supplied, must not contradict the signal's direction.
func (v *Validator) Validate(response string, primary, secondary []indicators.Row) (types.TradingDecision, error) {
	var zero types.TradingDecision

	if len(primary) == 0 {
		return zero, boterrors.NewDataError("decision", "validate", "empty primary series")
	}

	result := ParseOracleResponse(response)
	switch result.Status {
	case InsufficientData:
		return zero, &Rejection{Reason: ReasonInsufficientData}
	case Malformed:
		return zero, &Rejection{Reason: ReasonMalformed, Detail: result.Problem}
	}

	signal := types.Signal(result.Decision.Signal)
	if !signal.Valid() {
		return zero, &Rejection{
			Reason: ReasonMalformed,
			Detail: fmt.Sprintf("invalid signal %q", result.Decision.Signal),
		}
	}

	latest := primary[len(primary)-1]
	currentPrice := latest.Close
	stopLoss := result.Decision.StopLoss
	takeProfit := result.Decision.TakeProfit

	switch signal {
	case types.SignalBuy:
		if !(stopLoss < currentPrice && currentPrice < takeProfit) {
			return zero, &Rejection{
				Reason: ReasonInvalidPriceOrdering,
				Detail: fmt.Sprintf("buy requires stop %.5f < price %.5f < take profit %.5f", stopLoss, currentPrice, takeProfit),
			}
		}
	case types.SignalSell:
		if !(takeProfit < currentPrice && currentPrice < stopLoss) {
			return zero, &Rejection{
				Reason: ReasonInvalidPriceOrdering,
				Detail: fmt.Sprintf("sell requires take profit %.5f < price %.5f < stop %.5f", takeProfit, currentPrice, stopLoss),
			}
		}
	}

	if dist := math.Abs(currentPrice - stopLoss); dist < latest.ATR {
		return zero, &Rejection{
			Reason: ReasonStopTooClose,
			Detail: fmt.Sprintf("stop distance %.5f below ATR %.5f", dist, latest.ATR),
		}
	}

	if len(secondary) > 0 {
		if err := checkTrendAlignment(signal, primary, secondary); err != nil {
			return zero, err
		}
	}

	return types.TradingDecision{
		Signal:      signal,
		StopLoss:    stopLoss,
		TakeProfit:  takeProfit,
		Explanation: result.Decision.Explanation,
	}, nil
}

// checkTrendAlignment requires the primary timeframe to trend with the
// signal and the secondary timeframe to at least not trend against it.
func checkTrendAlignment(signal types.Signal, primary, secondary []indicators.Row) error {
	primaryTrend := indicators.DetectTrend(primary)
	secondaryTrend := indicators.DetectTrend(secondary)

	aligned := false
	switch signal {
	case types.SignalBuy:
		aligned = primaryTrend == indicators.TrendUp && secondaryTrend != indicators.TrendDown
	case types.SignalSell:
		aligned = primaryTrend == indicators.TrendDown && secondaryTrend != indicators.TrendUp
	}
	if !aligned {
		return &Rejection{
			Reason: ReasonTrendMisaligned,
			Detail: fmt.Sprintf("%s against primary %s / secondary %s", signal, primaryTrend, secondaryTrend),
		}
	}
	return nil
}
