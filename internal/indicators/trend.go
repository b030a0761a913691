package indicators

// Trend classifies the direction of a timeframe.
type Trend int

const (
	TrendNeutral Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "neutral"
	}
}

// adxTrendThreshold is the minimum trend strength for a directional call.
const adxTrendThreshold = 25.0

// DetectTrend classifies a series as up, down or neutral. A direction is
// called only when the latest SMA20 sits on the matching side of a 20-period
// smoothing of the SMA itself and ADX signals a strong trend.
func DetectTrend(rows []Row) Trend {
	if len(rows) == 0 {
		return TrendNeutral
	}

	sma := make([]float64, len(rows))
	for i, r := range rows {
		sma[i] = r.SMA20
	}
	smoothed := rollingMean(sma, 20)

	last := rows[len(rows)-1]
	slow := smoothed[len(smoothed)-1]
	if last.ADX <= adxTrendThreshold {
		return TrendNeutral
	}
	switch {
	case last.SMA20 > slow:
		return TrendUp
	case last.SMA20 < slow:
		return TrendDown
	default:
		return TrendNeutral
	}
}
