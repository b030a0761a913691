package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildPrompt_TwoTimeframes tests that both windows are embedded with
// their timeframe labels
func TestBuildPrompt_TwoTimeframes(t *testing.T) {
	prompt := BuildPrompt("XAUUSD", "1m", "5m", indicatorRows(10), indicatorRows(10))

	assert.Contains(t, prompt, "Analyze the following XAUUSD data:")
	assert.Contains(t, prompt, "1m chart data")
	assert.Contains(t, prompt, "5m chart data")
	assert.Contains(t, prompt, "Signal: [ONLY 'buy' or 'sell']")
	assert.Contains(t, prompt, InsufficientDataResponse)
}

// TestBuildPrompt_SecondaryOptional tests that an empty secondary window is
// omitted entirely
func TestBuildPrompt_SecondaryOptional(t *testing.T) {
	prompt := BuildPrompt("BTCUSDT", "5m", "15m", indicatorRows(10), nil)

	assert.Contains(t, prompt, "5m chart data")
	assert.NotContains(t, prompt, "15m chart data")
}

// TestBuildPrompt_TailsLongWindows tests that only the most recent rows are
// embedded
func TestBuildPrompt_TailsLongWindows(t *testing.T) {
	rows := indicatorRows(120)
	prompt := BuildPrompt("XAUUSD", "1m", "5m", rows, nil)

	lines := 0
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "2024-") {
			lines++
		}
	}
	assert.Equal(t, promptRows, lines)

	first := rows[len(rows)-promptRows]
	assert.Contains(t, prompt, first.Time.UTC().Format("2006-01-02 15:04"))
	assert.NotContains(t, prompt, rows[0].Time.UTC().Format("2006-01-02 15:04"))
}
