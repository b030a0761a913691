package indicators

import (
	"math"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// Row is a candle extended with the full indicator vector. Row i depends
// only on candles 0..i; the engine never looks ahead.
type Row struct {
	types.Candle

	Returns       float64
	SMA20         float64
	EMA50         float64
	RSI           float64
	MACD          float64
	SignalLine    float64
	MACDHistogram float64
	BBMiddle      float64
	BBUpper       float64
	BBLower       float64
	BBWidth       float64
	StochK        float64
	StochD        float64
	ATR           float64
	ADX           float64
	Momentum      float64
	ROC           float64
	OBV           float64
	VolumeROC     float64
}

// Config holds the indicator window parameters.
type Config struct {
	SMAPeriod      int
	EMAPeriod      int
	RSIPeriod      int
	MACDFast       int
	MACDSlow       int
	MACDSignal     int
	BBPeriod       int
	BBStdDev       float64
	StochPeriod    int
	StochSmooth    int
	ATRPeriod      int
	ADXPeriod      int
	MomentumPeriod int
	ROCPeriod      int
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		SMAPeriod:      20,
		EMAPeriod:      50,
		RSIPeriod:      14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		BBPeriod:       20,
		BBStdDev:       2.0,
		StochPeriod:    14,
		StochSmooth:    3,
		ATRPeriod:      14,
		ADXPeriod:      14,
		MomentumPeriod: 4,
		ROCPeriod:      12,
	}
}

// Engine computes the indicator vector for a candle series.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute transforms an ordered candle series into indicator rows of equal
// length. Short series degrade gracefully: windows that have not filled yet
// produce values from the samples available, and any still-undefined leading
// or trailing values are backfilled then forward filled so the output
// contains no NaN. It only fails on an empty series.
func (e *Engine) Compute(candles []types.Candle) ([]Row, error) {
	if len(candles) == 0 {
		return nil, boterrors.NewDataError("indicators", "compute", "empty candle series")
	}

	n := len(candles)
	close := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	volume := make([]float64, n)
	for i, c := range candles {
		close[i] = c.Close
		high[i] = c.High
		low[i] = c.Low
		volume[i] = c.TradedVolume()
	}

	returns := pctChange(close, 1)
	sma := rollingMean(close, e.cfg.SMAPeriod)
	emaLong := ema(close, e.cfg.EMAPeriod)
	rsi := e.computeRSI(close)
	macd, signalLine, histogram := e.computeMACD(close)
	bbMiddle, bbUpper, bbLower, bbWidth := e.computeBollinger(close)
	stochK, stochD := e.computeStochastic(close, high, low)
	tr := trueRange(high, low, close)
	atr := rollingMean(tr, e.cfg.ATRPeriod)
	adx := e.computeADX(high, low, tr)
	momentum := diff(close, e.cfg.MomentumPeriod)
	roc := scale(pctChange(close, e.cfg.ROCPeriod), 100)
	obv := onBalanceVolume(close, volume)
	volumeROC := scale(pctChange(volume, 1), 100)

	columns := [][]float64{
		returns, sma, emaLong, rsi, macd, signalLine, histogram,
		bbMiddle, bbUpper, bbLower, bbWidth, stochK, stochD,
		atr, adx, momentum, roc, obv, volumeROC,
	}
	for _, col := range columns {
		fillSeries(col)
	}

	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			Candle:        candles[i],
			Returns:       returns[i],
			SMA20:         sma[i],
			EMA50:         emaLong[i],
			RSI:           rsi[i],
			MACD:          macd[i],
			SignalLine:    signalLine[i],
			MACDHistogram: histogram[i],
			BBMiddle:      bbMiddle[i],
			BBUpper:       bbUpper[i],
			BBLower:       bbLower[i],
			BBWidth:       bbWidth[i],
			StochK:        stochK[i],
			StochD:        stochD[i],
			ATR:           atr[i],
			ADX:           adx[i],
			Momentum:      momentum[i],
			ROC:           roc[i],
			OBV:           obv[i],
			VolumeROC:     volumeROC[i],
		}
	}
	return rows, nil
}

func (e *Engine) computeRSI(close []float64) []float64 {
	delta := diff(close, 1)
	gains := make([]float64, len(delta))
	losses := make([]float64, len(delta))
	for i, d := range delta {
		switch {
		case math.IsNaN(d):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case d > 0:
			gains[i], losses[i] = d, 0
		case d < 0:
			gains[i], losses[i] = 0, -d
		default:
			gains[i], losses[i] = 0, 0
		}
	}
	gainMean := rollingMean(gains, e.cfg.RSIPeriod)
	lossMean := rollingMean(losses, e.cfg.RSIPeriod)

	out := make([]float64, len(close))
	for i := range out {
		switch {
		case math.IsNaN(gainMean[i]) || math.IsNaN(lossMean[i]):
			out[i] = math.NaN()
		case lossMean[i] == 0:
			// RS is undefined on a zero loss mean; RSI saturates at 100.
			out[i] = 100
		default:
			rs := gainMean[i] / lossMean[i]
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

func (e *Engine) computeMACD(close []float64) (macd, signalLine, histogram []float64) {
	fast := ema(close, e.cfg.MACDFast)
	slow := ema(close, e.cfg.MACDSlow)
	macd = make([]float64, len(close))
	for i := range macd {
		macd[i] = fast[i] - slow[i]
	}
	signalLine = ema(macd, e.cfg.MACDSignal)
	histogram = make([]float64, len(close))
	for i := range histogram {
		histogram[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, histogram
}

func (e *Engine) computeBollinger(close []float64) (middle, upper, lower, width []float64) {
	middle = rollingMean(close, e.cfg.BBPeriod)
	std := rollingStd(close, e.cfg.BBPeriod)
	upper = make([]float64, len(close))
	lower = make([]float64, len(close))
	width = make([]float64, len(close))
	for i := range close {
		upper[i] = middle[i] + std[i]*e.cfg.BBStdDev
		lower[i] = middle[i] - std[i]*e.cfg.BBStdDev
		if middle[i] == 0 {
			width[i] = math.NaN()
		} else {
			width[i] = (upper[i] - lower[i]) / middle[i]
		}
	}
	return middle, upper, lower, width
}

func (e *Engine) computeStochastic(close, high, low []float64) (k, d []float64) {
	lowest := rollingMin(low, e.cfg.StochPeriod)
	highest := rollingMax(high, e.cfg.StochPeriod)
	k = make([]float64, len(close))
	prev := math.NaN()
	for i := range close {
		rng := highest[i] - lowest[i]
		if rng == 0 {
			// Zero range leaves %K undefined; carry the prior valid value.
			k[i] = prev
			continue
		}
		k[i] = (close[i] - lowest[i]) / rng * 100
		prev = k[i]
	}
	d = rollingMean(k, e.cfg.StochSmooth)
	return k, d
}

func (e *Engine) computeADX(high, low, tr []float64) []float64 {
	n := len(high)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := range high {
		if i == 0 {
			plusDM[i], minusDM[i] = math.NaN(), math.NaN()
			continue
		}
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		// Only the strictly larger directional move counts; ties contribute
		// zero to both sides.
		plusDM[i], minusDM[i] = 0, 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	plusSum := rollingSum(plusDM, e.cfg.ADXPeriod)
	minusSum := rollingSum(minusDM, e.cfg.ADXPeriod)
	trSum := rollingSum(tr, e.cfg.ADXPeriod)

	dx := make([]float64, n)
	for i := range dx {
		if math.IsNaN(plusSum[i]) || math.IsNaN(minusSum[i]) || math.IsNaN(trSum[i]) || trSum[i] == 0 {
			dx[i] = math.NaN()
			continue
		}
		plusDI := 100 * plusSum[i] / trSum[i]
		minusDI := 100 * minusSum[i] / trSum[i]
		if plusDI+minusDI == 0 {
			dx[i] = math.NaN()
			continue
		}
		dx[i] = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}
	return rollingMean(dx, e.cfg.ADXPeriod)
}

func trueRange(high, low, close []float64) []float64 {
	out := make([]float64, len(high))
	for i := range high {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prevClose := close[i-1]
		out[i] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-prevClose), math.Abs(low[i]-prevClose)))
	}
	return out
}

func onBalanceVolume(close, volume []float64) []float64 {
	out := make([]float64, len(close))
	cumulative := 0.0
	for i := range close {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		switch {
		case close[i] > close[i-1]:
			cumulative += volume[i]
		case close[i] < close[i-1]:
			cumulative -= volume[i]
		}
		out[i] = cumulative
	}
	return out
}

func scale(values []float64, factor float64) []float64 {
	for i := range values {
		values[i] *= factor
	}
	return values
}
