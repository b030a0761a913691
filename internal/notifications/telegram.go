package notifications

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type TelegramNotifier struct {
	token   string
	chatID  string
	apiBase string
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		apiBase: "https://api.telegram.org",
	}
}

// SendTradeAlert reports an executed bracket order.
func (t *TelegramNotifier) SendTradeAlert(signal, symbol, orderID string, size, entry, stopLoss, takeProfit float64) error {
	direction := "🟢 BUY"
	if signal == "sell" {
		direction = "🔴 SELL"
	}
	return t.SendAlert("success", fmt.Sprintf(
		"%s %s executed\nSize: %.4f @ $%.4f\nSL: $%.4f | TP: $%.4f\nOrder: %s",
		direction, symbol, size, entry, stopLoss, takeProfit, orderID))
}

func (t *TelegramNotifier) SendAlert(level, message string) error {
	emoji := "ℹ️"
	switch level {
	case "warning":
		emoji = "⚠️"
	case "error":
		emoji = "🚨"
	case "success":
		emoji = "✅"
	}

	text := fmt.Sprintf("%s *Trading Bot Alert*\n\n%s", emoji, message)

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "Markdown")

	resp, err := http.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}
