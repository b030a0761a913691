package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/llm-trading-bot/internal/bot"
	"github.com/ducminhle1904/llm-trading-bot/internal/config"
	"github.com/ducminhle1904/llm-trading-bot/internal/exchange"
	"github.com/ducminhle1904/llm-trading-bot/internal/exchange/bybit"
	"github.com/ducminhle1904/llm-trading-bot/internal/logger"
	"github.com/ducminhle1904/llm-trading-bot/internal/monitoring"
	"github.com/ducminhle1904/llm-trading-bot/internal/notifications"
	"github.com/ducminhle1904/llm-trading-bot/internal/oracle"
)

func main() {
	var (
		riskFile = flag.String("risk", "", "Risk limits JSON file (e.g., conservative.json)")
		envFile  = flag.String("env", ".env", "Environment file path")
	)
	flag.Parse()

	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: could not load %s (%v), using environment variables", *envFile, err)
	}

	cfg, err := config.Load(*riskFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateLive(); err != nil {
		log.Fatalf("Invalid live configuration: %v", err)
	}

	tradeLogger, err := logger.NewLogger(cfg.Trading.Symbol, cfg.Trading.PrimaryTimeframe)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer tradeLogger.Close()

	bybitClient := bybit.NewClient(bybit.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Testnet:   cfg.Exchange.Testnet,
		Demo:      cfg.Exchange.Demo,
	})
	gateway := exchange.NewBybitGateway(bybitClient, cfg.Trading.Symbol)

	oracleOpts := []oracle.Option{
		oracle.WithModel(cfg.Oracle.Model),
		oracle.WithRetry(cfg.Oracle.MaxRetries, cfg.Oracle.RetryDelay),
	}
	if cfg.Oracle.APIURL != "" {
		oracleOpts = append(oracleOpts, oracle.WithAPIURL(cfg.Oracle.APIURL))
	}
	oracleClient := oracle.NewClient(cfg.Oracle.APIKey, cfg.Trading.Symbol,
		cfg.Trading.PrimaryTimeframe, cfg.Trading.SecondaryTimeframe, oracleOpts...)

	var notifier notifications.Notifier
	if cfg.Notifications.TelegramToken != "" {
		notifier = notifications.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID)
		fmt.Println("📱 Telegram notifications enabled")
	}

	health := monitoring.NewHealthChecker()
	startMonitoringServers(cfg, health)

	tradingBot := bot.New(cfg, gateway, oracleClient, tradeLogger, notifier, health)
	if err := tradingBot.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\n🛑 Shutdown signal received...")

	tradingBot.Stop()
	fmt.Println("✅ Bot stopped successfully")
}

func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err != nil {
		return fmt.Errorf("env file %s not found", envFile)
	}
	return godotenv.Load(envFile)
}

func startMonitoringServers(cfg *config.Config, health *monitoring.HealthChecker) {
	if port := cfg.Monitoring.MetricsPort; port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.NewMetricsHandler())
		go serveHTTP(port, mux, "metrics")
		fmt.Printf("📈 Metrics: http://localhost:%d/metrics\n", port)
	}
	if port := cfg.Monitoring.HealthPort; port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/health", health)
		go serveHTTP(port, mux, "health")
		fmt.Printf("❤️ Health: http://localhost:%d/health\n", port)
	}
}

func serveHTTP(port int, handler http.Handler, name string) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("⚠️ %s server stopped: %v", name, err)
	}
}
