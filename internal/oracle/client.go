package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
)

const (
	defaultAPIURL     = "https://api.openai.com/v1/chat/completions"
	defaultModel      = "gpt-4o-mini"
	defaultMaxRetries = 3
	defaultRetryDelay = 5 * time.Second
)

// Client requests trading decisions from an OpenAI-compatible
// chat-completions endpoint. It returns the raw response text; parsing and
// validation happen downstream.
type Client struct {
	apiURL      string
	apiKey      string
	model       string
	symbol      string
	primaryTF   string
	secondaryTF string

	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithAPIURL points the client at a non-default endpoint.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) { c.apiURL = apiURL }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRetry sets the number of attempts beyond the first and the fixed
// delay between them.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// NewClient creates an oracle client for one symbol and timeframe pair.
func NewClient(apiKey, symbol, primaryTF, secondaryTF string, opts ...Option) *Client {
	c := &Client{
		apiURL:      defaultAPIURL,
		apiKey:      apiKey,
		model:       defaultModel,
		symbol:      symbol,
		primaryTF:   primaryTF,
		secondaryTF: secondaryTF,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxRetries:  defaultMaxRetries,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Propose builds the prompt for the given indicator windows and returns the
// model's raw response text. Transient failures are retried with a fixed
// delay before giving up.
func (c *Client) Propose(ctx context.Context, primary, secondary []indicators.Row) (string, error) {
	prompt := BuildPrompt(c.symbol, c.primaryTF, c.secondaryTF, primary, secondary)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		response, err := c.complete(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err

		var botErr *boterrors.BotError
		if errors.As(err, &botErr) && !botErr.IsRetryable() {
			return "", err
		}
	}

	return "", boterrors.WrapError(lastErr, boterrors.ErrorCategoryOracle, "oracle", "propose")
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", boterrors.NewOracleError("oracle", "complete", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", boterrors.NewOracleError("oracle", "complete", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", boterrors.NewNetworkError("oracle", "complete", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", boterrors.NewNetworkError("oracle", "complete", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", boterrors.NewCredentialsError("oracle", "complete",
			fmt.Sprintf("chat completions returned status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", boterrors.NewBotError(boterrors.ErrorCategoryRateLimit, "oracle", "complete",
			fmt.Sprintf("chat completions returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return "", boterrors.NewOracleError("oracle", "complete",
			fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode, string(payload)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", boterrors.NewOracleError("oracle", "complete", err)
	}
	if parsed.Error != nil {
		return "", boterrors.NewOracleError("oracle", "complete",
			fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", boterrors.NewOracleError("oracle", "complete", fmt.Errorf("response carried no choices"))
	}

	return parsed.Choices[0].Message.Content, nil
}
