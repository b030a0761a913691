package oracle

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
)

// promptRows is the number of most-recent rows embedded per timeframe.
const promptRows = 50

// InsufficientDataResponse is the literal opt-out the model is instructed
// to return when it cannot decide. Downstream parsing matches on it.
const InsufficientDataResponse = "Insufficient data to make a trading decision."

// BuildPrompt renders the instruction prompt for one decision. The primary
// timeframe drives entry timing; the secondary gives the broader trend
// context and may be empty.
func BuildPrompt(symbol, primaryTimeframe, secondaryTimeframe string, primary, secondary []indicators.Row) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following %s data:\n\n", symbol)
	fmt.Fprintf(&b, "%s chart data (last %d candles):\n", primaryTimeframe, promptRows)
	writeRows(&b, tail(primary, promptRows))
	if len(secondary) > 0 {
		fmt.Fprintf(&b, "\n%s chart data (last %d candles):\n", secondaryTimeframe, promptRows)
		writeRows(&b, tail(secondary, promptRows))
	}

	b.WriteString(`
Each candle includes: Timestamp, Open, High, Low, Close, Volume, SMA, EMA, RSI, MACD, Bollinger Bands, Stochastic, ATR, ADX

Based on this comprehensive data, generate ONE precise trading decision. Your response MUST EXACTLY follow this format:

Signal: [ONLY 'buy' or 'sell']
Stop Loss: [EXACT price number]
Take Profit: [EXACT price number]
Explanation: [1-2 sentences ONLY]

CRITICAL RULES:
1. Adhere STRICTLY to the format above. No additional text allowed.
2. Signal MUST be either 'buy' or 'sell'. No alternatives permitted.
3. Stop Loss and Take Profit MUST be specific numerical values.
4. For 'buy': Stop Loss < current price < Take Profit
5. For 'sell': Take Profit < current price < Stop Loss
6. Explanation MUST be concise (1-2 sentences max) focusing ONLY on the primary reason for the decision.
7. DO NOT include any analysis, questions, or extra commentary.
8. If data is insufficient, respond ONLY with: "` + InsufficientDataResponse + `"

IMPORTANT:
- Analyze both timeframes for a comprehensive view.
- Consider recent price action, trends, and potential reversals.
- Pay attention to key technical indicators and their crossovers.
- Look for significant support/resistance levels in both timeframes.
- Ensure your decision aligns with the overall trend visible in the data.
`)

	return b.String()
}

func writeRows(b *strings.Builder, rows []indicators.Row) {
	for _, r := range rows {
		fmt.Fprintf(b,
			"%s O=%.4f H=%.4f L=%.4f C=%.4f V=%.0f SMA20=%.4f EMA50=%.4f RSI=%.2f MACD=%.4f Signal=%.4f BB=[%.4f %.4f %.4f] StochK=%.2f StochD=%.2f ATR=%.4f ADX=%.2f\n",
			r.Time.UTC().Format("2006-01-02 15:04"),
			r.Open, r.High, r.Low, r.Close, r.TradedVolume(),
			r.SMA20, r.EMA50, r.RSI, r.MACD, r.SignalLine,
			r.BBLower, r.BBMiddle, r.BBUpper,
			r.StochK, r.StochD, r.ATR, r.ADX)
	}
}

func tail(rows []indicators.Row, n int) []indicators.Row {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
