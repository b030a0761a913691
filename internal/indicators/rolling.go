package indicators

import "math"

// Rolling window helpers. All of them use only past and current samples
// (window i covers indices max(0, i-w+1)..i) and skip NaN entries, producing
// a value as soon as one valid sample is available.

func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		sum, n := 0.0, 0
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				n++
			}
		}
		if n == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(n)
		}
	}
	return out
}

func rollingSum(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		sum, n := 0.0, 0
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				n++
			}
		}
		if n == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum
		}
	}
	return out
}

// rollingStd is the sample standard deviation (n-1 denominator); it needs at
// least two valid samples.
func rollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		sum, n := 0.0, 0
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				n++
			}
		}
		if n < 2 {
			out[i] = math.NaN()
			continue
		}
		mean := sum / float64(n)
		variance := 0.0
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(values[j]) {
				variance += (values[j] - mean) * (values[j] - mean)
			}
		}
		out[i] = math.Sqrt(variance / float64(n-1))
	}
	return out
}

func rollingMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		m, ok := math.Inf(1), false
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(values[j]) && values[j] < m {
				m, ok = values[j], true
			}
		}
		if !ok {
			out[i] = math.NaN()
		} else {
			out[i] = m
		}
	}
	return out
}

func rollingMax(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		m, ok := math.Inf(-1), false
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(values[j]) && values[j] > m {
				m, ok = values[j], true
			}
		}
		if !ok {
			out[i] = math.NaN()
		} else {
			out[i] = m
		}
	}
	return out
}

// ema computes an exponential moving average with smoothing factor
// 2/(span+1), seeded from the first observation.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	alpha := 2.0 / (float64(span) + 1.0)
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = prev
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// diff returns values[i] - values[i-periods], NaN where no prior sample exists.
func diff(values []float64, periods int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < periods {
			out[i] = math.NaN()
		} else {
			out[i] = values[i] - values[i-periods]
		}
	}
	return out
}

// pctChange returns the fractional change over the given number of periods.
func pctChange(values []float64, periods int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < periods || values[i-periods] == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = (values[i] - values[i-periods]) / values[i-periods]
		}
	}
	return out
}

// fillSeries removes NaN gaps the way the pipeline expects: leading NaNs are
// backfilled from the first valid value, remaining gaps are forward filled.
// A series with no valid value at all collapses to zero.
func fillSeries(values []float64) {
	firstValid := -1
	for i, v := range values {
		if !math.IsNaN(v) {
			firstValid = i
			break
		}
	}
	if firstValid == -1 {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i := 0; i < firstValid; i++ {
		values[i] = values[firstValid]
	}
	for i := firstValid + 1; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			values[i] = values[i-1]
		}
	}
}

func windowStart(i, window int) int {
	if i-window+1 > 0 {
		return i - window + 1
	}
	return 0
}
