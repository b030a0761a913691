package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cycle metrics
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_bot_cycles_total",
			Help: "Total number of trading cycles run",
		},
		[]string{"symbol", "outcome"},
	)

	// Decision metrics
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_bot_decisions_total",
			Help: "Total number of oracle decisions by status",
		},
		[]string{"symbol", "status"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_bot_rejections_total",
			Help: "Total number of rejected decisions by reason",
		},
		[]string{"symbol", "reason"},
	)

	// Trading metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_bot_trades_total",
			Help: "Total number of trades executed",
		},
		[]string{"symbol", "side"},
	)

	tradeSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_bot_trade_size",
			Help:    "Distribution of executed trade sizes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	// Market and account metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_bot_current_price",
			Help: "Current price of trading symbol",
		},
		[]string{"symbol"},
	)

	accountBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_bot_account_balance",
			Help: "Account balance reported by the exchange",
		},
		[]string{"symbol"},
	)

	accountEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_bot_account_equity",
			Help: "Account equity reported by the exchange",
		},
		[]string{"symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_bot_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(rejectionsTotal)
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(tradeSize)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(accountBalance)
	prometheus.MustRegister(accountEquity)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordCycle records a completed trading cycle
func RecordCycle(symbol, outcome string) {
	cyclesTotal.WithLabelValues(symbol, outcome).Inc()
}

// RecordDecision records an oracle decision status ("accepted", "rejected",
// "insufficient_data")
func RecordDecision(symbol, status string) {
	decisionsTotal.WithLabelValues(symbol, status).Inc()
}

// RecordRejection records a decision rejection by reason
func RecordRejection(symbol, reason string) {
	rejectionsTotal.WithLabelValues(symbol, reason).Inc()
}

// RecordTrade records an executed trade
func RecordTrade(symbol, side string, size float64) {
	tradesTotal.WithLabelValues(symbol, side).Inc()
	tradeSize.WithLabelValues(symbol).Observe(size)
}

// UpdatePrice updates the current price gauge
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdateAccount updates the balance and equity gauges
func UpdateAccount(symbol string, balance, equity float64) {
	accountBalance.WithLabelValues(symbol).Set(balance)
	accountEquity.WithLabelValues(symbol).Set(equity)
}

// RecordError records an error by category
func RecordError(category string) {
	errorsTotal.WithLabelValues(category).Inc()
}
