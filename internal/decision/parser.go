package decision

import (
	"strconv"
	"strings"
)

// ParseStatus tags the outcome of parsing an oracle response.
type ParseStatus int

const (
	// Parsed means every required field was present and well formed.
	Parsed ParseStatus = iota
	// Malformed means the response is missing fields or carries values
	// that do not parse.
	Malformed
	// InsufficientData means the oracle explicitly declined to decide.
	// This is an expected outcome, not an error.
	InsufficientData
)

// insufficientDataLine is the literal opt-out response the oracle is
// instructed to produce when it cannot decide.
const insufficientDataLine = "Insufficient data to make a trading decision"

// RawDecision holds the fields extracted from the oracle's free text before
// any semantic validation.
type RawDecision struct {
	Signal      string
	StopLoss    float64
	TakeProfit  float64
	Explanation string
}

// ParseResult is the tagged result of parsing.
type ParseResult struct {
	Status   ParseStatus
	Decision RawDecision
	Problem  string
}

// ParseOracleResponse extracts a raw decision from the oracle's plain-text
// reply. Parsing is line-prefix based: the lines "Signal:", "Stop Loss:",
// "Take Profit:" and "Explanation:" may appear in any order, one per line,
// with trailing whitespace tolerated. Parsing failures never escape as
// errors; they are reported through the result tag.
func ParseOracleResponse(response string) ParseResult {
	if strings.Contains(response, insufficientDataLine) {
		return ParseResult{Status: InsufficientData}
	}

	var (
		raw             RawDecision
		haveSignal      bool
		haveStop        bool
		haveTake        bool
		haveExplanation bool
	)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Signal:"):
			raw.Signal = strings.TrimSpace(strings.TrimPrefix(line, "Signal:"))
			haveSignal = true
		case strings.HasPrefix(line, "Stop Loss:"):
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Stop Loss:")), 64)
			if err != nil {
				return ParseResult{Status: Malformed, Problem: "invalid stop loss value"}
			}
			raw.StopLoss = v
			haveStop = true
		case strings.HasPrefix(line, "Take Profit:"):
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Take Profit:")), 64)
			if err != nil {
				return ParseResult{Status: Malformed, Problem: "invalid take profit value"}
			}
			raw.TakeProfit = v
			haveTake = true
		case strings.HasPrefix(line, "Explanation:"):
			raw.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "Explanation:"))
			haveExplanation = true
		}
	}

	if !haveSignal || !haveStop || !haveTake || !haveExplanation {
		return ParseResult{Status: Malformed, Problem: "incomplete decision data"}
	}
	return ParseResult{Status: Parsed, Decision: raw}
}
