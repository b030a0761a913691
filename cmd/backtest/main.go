package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/llm-trading-bot/internal/backtest"
	"github.com/ducminhle1904/llm-trading-bot/internal/config"
	"github.com/ducminhle1904/llm-trading-bot/internal/indicators"
	"github.com/ducminhle1904/llm-trading-bot/internal/oracle"
	"github.com/ducminhle1904/llm-trading-bot/pkg/data"
	"github.com/ducminhle1904/llm-trading-bot/pkg/reporting"
)

func main() {
	var (
		dataFile  = flag.String("data", "", "Historical candles CSV file (required)")
		riskFile  = flag.String("risk", "", "Risk limits JSON file")
		envFile   = flag.String("env", ".env", "Environment file path")
		startDate = flag.String("start", "", "Start date (2006-01-02), optional")
		endDate   = flag.String("end", "", "End date (2006-01-02), optional")
		jsonOut   = flag.String("json", "", "Write results JSON to this path")
		xlsxOut   = flag.String("xlsx", "", "Write trade log XLSX to this path")
		maxRows   = flag.Int("show-trades", 20, "Trades to print on the console, 0 for all")
	)
	flag.Parse()

	if *dataFile == "" {
		log.Fatal("Please specify a data file with -data flag")
	}
	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: could not load %s (%v), using environment variables", *envFile, err)
	}

	cfg, err := config.Load(*riskFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Oracle.APIKey == "" {
		log.Fatal("Please set ORACLE_API_KEY: the replay queries the live oracle over historical windows")
	}

	var provider data.Provider = data.NewCSVProvider()
	candles, err := provider.Load(*dataFile)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	start, end, err := parseDateRange(*startDate, *endDate)
	if err != nil {
		log.Fatal(err)
	}
	candles = data.FilterByDateRange(candles, start, end)
	if err := data.ValidateSequence(candles); err != nil {
		log.Fatalf("Bad candle series: %v", err)
	}

	fmt.Println("🚀 Backtest starting...")
	fmt.Printf("📊 Symbol: %s (%s)\n", cfg.Trading.Symbol, cfg.Trading.PrimaryTimeframe)
	fmt.Printf("📂 Data: %s (%d candles)\n", *dataFile, len(candles))
	fmt.Printf("💰 Initial Balance: $%.2f\n", cfg.Trading.InitialBalance)
	fmt.Printf("🧠 Oracle Model: %s\n", cfg.Oracle.Model)

	oracleOpts := []oracle.Option{
		oracle.WithModel(cfg.Oracle.Model),
		oracle.WithRetry(cfg.Oracle.MaxRetries, cfg.Oracle.RetryDelay),
	}
	if cfg.Oracle.APIURL != "" {
		oracleOpts = append(oracleOpts, oracle.WithAPIURL(cfg.Oracle.APIURL))
	}
	oracleClient := oracle.NewClient(cfg.Oracle.APIKey, cfg.Trading.Symbol,
		cfg.Trading.PrimaryTimeframe, cfg.Trading.SecondaryTimeframe, oracleOpts...)

	engine := backtest.NewEngine(cfg.Trading.InitialBalance, indicators.DefaultConfig(),
		cfg.Risk, oracleClient, backtest.WithLookback(cfg.Trading.LookbackCandles))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	results, err := engine.Run(ctx, candles)
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	reporting.PrintSummary(results, cfg.Trading.Symbol, cfg.Trading.PrimaryTimeframe)
	reporting.PrintTrades(results, *maxRows)

	if *jsonOut != "" {
		if err := reporting.WriteResultsJSON(results, cfg.Trading.Symbol, cfg.Trading.PrimaryTimeframe, *jsonOut); err != nil {
			log.Fatalf("Failed to write JSON results: %v", err)
		}
		fmt.Printf("💾 Results written to %s\n", *jsonOut)
	}
	if *xlsxOut != "" {
		if err := reporting.WriteTradesXLSX(results, *xlsxOut); err != nil {
			log.Fatalf("Failed to write XLSX trade log: %v", err)
		}
		fmt.Printf("💾 Trade log written to %s\n", *xlsxOut)
	}
}

func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err != nil {
		return fmt.Errorf("env file %s not found", envFile)
	}
	return godotenv.Load(envFile)
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	var startTime, endTime time.Time
	var err error
	if start != "" {
		startTime, err = time.Parse("2006-01-02", start)
		if err != nil {
			return startTime, endTime, fmt.Errorf("invalid -start date %q: %w", start, err)
		}
	}
	if end != "" {
		endTime, err = time.Parse("2006-01-02", end)
		if err != nil {
			return startTime, endTime, fmt.Errorf("invalid -end date %q: %w", end, err)
		}
		// Include the whole end day.
		endTime = endTime.Add(24*time.Hour - time.Nanosecond)
	}
	return startTime, endTime, nil
}
