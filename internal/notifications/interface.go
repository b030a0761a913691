package notifications

// Notifier defines the interface for notification services
type Notifier interface {
	// SendAlert sends an alert with the specified level and message
	SendAlert(level, message string) error

	// SendTradeAlert reports an executed bracket order
	SendTradeAlert(signal, symbol, orderID string, size, entry, stopLoss, takeProfit float64) error
}
