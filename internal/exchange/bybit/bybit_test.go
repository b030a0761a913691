package bybit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseInterval tests the timeframe label mapping
func TestParseInterval(t *testing.T) {
	interval, err := ParseInterval("5m")
	require.NoError(t, err)
	assert.Equal(t, Interval5m, interval)

	interval, err = ParseInterval("1h")
	require.NoError(t, err)
	assert.Equal(t, Interval1h, interval)

	_, err = ParseInterval("7m")
	assert.Error(t, err)
}

// TestSnapToConstraints tests lot step rounding and min/max clamping
func TestSnapToConstraints(t *testing.T) {
	constraints := LotConstraints{MinOrderQty: 0.001, MaxOrderQty: 100, QtyStep: 0.001}

	assert.Equal(t, 0.123, snapToConstraints(0.1234, constraints))
	assert.Equal(t, 0.001, snapToConstraints(0.0001, constraints), "below minimum snaps up")
	assert.Equal(t, 100.0, snapToConstraints(250, constraints), "above maximum clamps down")
	assert.Equal(t, 0.124, snapToConstraints(0.1235, constraints), "rounds to nearest step")
}

// TestSnapToConstraints_NoStep tests that a missing step leaves the
// quantity untouched
func TestSnapToConstraints_NoStep(t *testing.T) {
	assert.Equal(t, 0.1234, snapToConstraints(0.1234, LotConstraints{}))
}

// TestParseAPIError tests retCode handling
func TestParseAPIError(t *testing.T) {
	assert.NoError(t, ParseAPIError(0, "OK"))

	err := ParseAPIError(ErrCodeRateLimitExceeded, "rate limit")
	require.Error(t, err)
	assert.True(t, IsRetryableError(err))
	assert.False(t, IsAuthenticationError(err))

	err = ParseAPIError(ErrCodeInvalidAPIKey, "bad key")
	assert.True(t, IsAuthenticationError(err))
	assert.False(t, IsRetryableError(err))

	err = ParseAPIError(ErrCodeInsufficientBalance, "no margin")
	assert.True(t, IsInsufficientBalanceError(err))
}

// TestIsRetryableError_Wrapped tests that wrapping preserves detection
func TestIsRetryableError_Wrapped(t *testing.T) {
	err := WrapAPIError("get klines", ParseAPIError(ErrCodeRateLimitExceeded, "rate limit"))
	assert.True(t, IsRetryableError(err))
}
