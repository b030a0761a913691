package types

// Signal is the direction of a trading decision.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
)

// Valid reports whether the signal is one of the two recognized directions.
func (s Signal) Valid() bool {
	return s == SignalBuy || s == SignalSell
}

// TradingDecision is a validated, directional trade proposal. The price
// ordering invariant is enforced at construction time by the decision
// validator: for a buy, StopLoss < reference price < TakeProfit; for a
// sell, TakeProfit < reference price < StopLoss.
type TradingDecision struct {
	Signal      Signal
	StopLoss    float64
	TakeProfit  float64
	Explanation string
}
