package data

import (
	"sort"
	"time"

	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// Provider loads a historical candle series from some source.
type Provider interface {
	// Load returns candles in chronological order.
	Load(source string) ([]types.Candle, error)

	// Name identifies the provider in logs and reports.
	Name() string
}

// FilterByDateRange keeps candles with start <= time <= end. Zero bounds
// are open-ended.
func FilterByDateRange(candles []types.Candle, start, end time.Time) []types.Candle {
	var out []types.Candle
	for _, c := range candles {
		if !start.IsZero() && c.Time.Before(start) {
			continue
		}
		if !end.IsZero() && c.Time.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortByTime orders candles chronologically and drops duplicate timestamps,
// keeping the first occurrence.
func SortByTime(candles []types.Candle) []types.Candle {
	if len(candles) <= 1 {
		return candles
	}

	sorted := make([]types.Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	out := sorted[:1]
	for _, c := range sorted[1:] {
		if !c.Time.Equal(out[len(out)-1].Time) {
			out = append(out, c)
		}
	}
	return out
}
