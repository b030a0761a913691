package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger represents a file logger for trading activities
type Logger struct {
	symbol    string
	timeframe string
	logFile   *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logDir    string
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelTrade   LogLevel = "TRADE"
	LogLevelStatus  LogLevel = "STATUS"
)

// NewLogger creates a new file logger for the specified symbol and timeframe
func NewLogger(symbol, timeframe string) (*Logger, error) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s_%s.log", symbol, timeframe, timestamp)
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := log.New(file, "", 0)

	l := &Logger{
		symbol:    symbol,
		timeframe: timeframe,
		logFile:   file,
		logger:    logger,
		logDir:    logDir,
	}

	l.writeSessionHeader()

	return l, nil
}

// writeSessionHeader writes a session start header to the log
func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🚀 TRADING SESSION STARTED
================================================================================
Symbol: %s | Timeframe: %s
Started: %s
Log File: %s_%s_%s.log
================================================================================
`, l.symbol, l.timeframe, time.Now().Format("2006-01-02 15:04:05"),
		l.symbol, l.timeframe, time.Now().Format("2006-01-02"))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	logEntry := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)

	l.logger.Println(logEntry)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// Trade logs a trading action
func (l *Logger) Trade(format string, args ...interface{}) {
	l.Log(LogLevelTrade, format, args...)
}

// Status logs market status information
func (l *Logger) Status(format string, args ...interface{}) {
	l.Log(LogLevelStatus, format, args...)
}

// LogDecision logs an accepted oracle decision
func (l *Logger) LogDecision(signal string, entryPrice, stopLoss, takeProfit float64, explanation string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	decisionLog := fmt.Sprintf(`
[%s] [STATUS] ==================== DECISION ACCEPTED ====================
📋 Signal: %s
💰 Entry: $%.4f | Stop Loss: $%.4f | Take Profit: $%.4f
💬 %s
=============================================================`,
		timestamp, signal, entryPrice, stopLoss, takeProfit, explanation)

	l.logger.Println(decisionLog)
}

// LogRejection logs a rejected oracle decision with its reason
func (l *Logger) LogRejection(reason, detail string) {
	l.Warning("Decision rejected (%s): %s", reason, detail)
}

// LogRiskBlock logs a risk gate refusal
func (l *Logger) LogRiskBlock(condition string) {
	l.Warning("Risk gate blocked trading: %s", condition)
}

// LogTradeExecution logs trade execution details
func (l *Logger) LogTradeExecution(signal, orderID string, size, entryPrice, stopLoss, takeProfit float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	tradeLog := fmt.Sprintf(`
[%s] [TRADE] ==================== %s EXECUTED ====================
✅ Order ID: %s
📦 Size: %.4f %s
💰 Entry: $%.4f
🛑 Stop Loss: $%.4f
🎯 Take Profit: $%.4f
=============================================================`,
		timestamp, signal, orderID, size, l.symbol, entryPrice, stopLoss, takeProfit)

	l.logger.Println(tradeLog)
}

// LogAccountStatus logs the per-cycle account snapshot
func (l *Logger) LogAccountStatus(balance, equity, margin float64, openPositions int) {
	l.Status("Account - Balance: $%.2f | Equity: $%.2f | Margin: $%.2f | Open Positions: %d",
		balance, equity, margin, openPositions)
}

// LogError logs error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		footer := fmt.Sprintf(`
================================================================================
🛑 TRADING SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, timestamp)
		l.logger.Print(footer)

		return l.logFile.Close()
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s_%s.log", l.symbol, l.timeframe, timestamp)
	return filepath.Join(l.logDir, filename)
}
