package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

func indicatorRows(n int) []indicators.Row {
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	rows := make([]indicators.Row, n)
	for i := range rows {
		rows[i] = indicators.Row{
			Candle: types.Candle{
				Time:   base.Add(time.Duration(i) * 5 * time.Minute),
				Open:   2300,
				High:   2301,
				Low:    2299,
				Close:  2300.5,
				Volume: 1000,
			},
			SMA20: 2300,
			RSI:   55,
			ATR:   1.5,
		}
	}
	return rows
}

func chatCompletion(content string) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(payload)
}

// TestClient_Propose_ReturnsContent tests the happy path against a stub server
func TestClient_Propose_ReturnsContent(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(chatCompletion("Signal: buy\nStop Loss: 2290\nTake Profit: 2320\nExplanation: momentum")))
	}))
	defer server.Close()

	client := NewClient("test-key", "XAUUSD", "1m", "5m", WithAPIURL(server.URL))
	response, err := client.Propose(context.Background(), indicatorRows(10), indicatorRows(10))
	require.NoError(t, err)

	assert.Contains(t, response, "Signal: buy")
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, defaultModel, gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "XAUUSD")
	assert.False(t, gotReq.Stream)
}

// TestClient_Propose_RetriesServerErrors tests the fixed-delay retry loop
func TestClient_Propose_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chatCompletion(InsufficientDataResponse)))
	}))
	defer server.Close()

	client := NewClient("test-key", "XAUUSD", "1m", "5m",
		WithAPIURL(server.URL), WithRetry(3, time.Millisecond))
	response, err := client.Propose(context.Background(), indicatorRows(10), nil)
	require.NoError(t, err)
	assert.Equal(t, InsufficientDataResponse, response)
	assert.Equal(t, 3, attempts)
}

// TestClient_Propose_ExhaustedRetries tests that a persistent failure
// surfaces after the final attempt
func TestClient_Propose_ExhaustedRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", "XAUUSD", "1m", "5m",
		WithAPIURL(server.URL), WithRetry(2, time.Millisecond))
	_, err := client.Propose(context.Background(), indicatorRows(10), nil)
	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var botErr *boterrors.BotError
	require.True(t, errors.As(err, &botErr))
	assert.Equal(t, boterrors.ErrorCategoryOracle, botErr.Category)
}

// TestClient_Propose_CredentialsNotRetried tests that auth failures stop
// immediately
func TestClient_Propose_CredentialsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", "XAUUSD", "1m", "5m",
		WithAPIURL(server.URL), WithRetry(3, time.Millisecond))
	_, err := client.Propose(context.Background(), indicatorRows(10), nil)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var botErr *boterrors.BotError
	require.True(t, errors.As(err, &botErr))
	assert.True(t, botErr.IsFatal())
}

// TestClient_Propose_APIErrorBody tests the in-body error object OpenAI
// returns with a 200-range status on some failures
func TestClient_Propose_APIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "XAUUSD", "1m", "5m",
		WithAPIURL(server.URL), WithRetry(0, time.Millisecond))
	_, err := client.Propose(context.Background(), indicatorRows(10), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}
