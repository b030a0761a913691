package reporting

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/llm-trading-bot/internal/backtest"
)

// PrintSummary prints the headline metrics of a backtest run.
func PrintSummary(results *backtest.Results, symbol, timeframe string) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Printf("📊 BACKTEST RESULTS: %s %s\n", symbol, timeframe)
	fmt.Println(strings.Repeat("=", 50))

	totalReturn := 0.0
	if results.StartBalance > 0 {
		totalReturn = (results.EndBalance - results.StartBalance) / results.StartBalance
	}

	fmt.Printf("💰 Initial Balance:  $%.2f\n", results.StartBalance)
	fmt.Printf("💰 Final Balance:    $%.2f\n", results.EndBalance)
	fmt.Printf("📈 Total Return:     %.2f%%\n", totalReturn*100)
	fmt.Printf("📉 Max Drawdown:     %.2f%%\n", results.MaxDrawdown*100)
	fmt.Printf("📊 Sharpe Ratio:     %.2f\n", results.SharpeRatio)
	fmt.Printf("💹 Profit Factor:    %.2f\n", results.ProfitFactor)
	fmt.Printf("🔄 Total Trades:     %d\n", results.TotalTrades)
	fmt.Printf("✅ Win Rate:         %.1f%%\n", results.WinRate*100)
	fmt.Printf("📊 Average Win:      $%.2f\n", results.AverageWin)
	fmt.Printf("📊 Average Loss:     $%.2f\n", results.AverageLoss)
}

// PrintTrades renders the individual trades as a table. maxRows caps the
// output; zero means all trades.
func PrintTrades(results *backtest.Results, maxRows int) {
	if len(results.Trades) == 0 {
		return
	}

	trades := results.Trades
	truncated := 0
	if maxRows > 0 && len(trades) > maxRows {
		truncated = len(trades) - maxRows
		trades = trades[:maxRows]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADES")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Entry", "Signal", "Entry $", "Exit $", "SL", "TP", "Size", "PnL", "Balance"})

	for i, trade := range trades {
		pnlLabel := fmt.Sprintf("🟢 %.2f", trade.PnL)
		if trade.PnL < 0 {
			pnlLabel = fmt.Sprintf("🔴 %.2f", trade.PnL)
		}
		t.AppendRow(table.Row{
			i + 1,
			trade.EntryTime.Format("2006-01-02 15:04"),
			strings.ToUpper(string(trade.Signal)),
			fmt.Sprintf("%.4f", trade.EntryPrice),
			fmt.Sprintf("%.4f", trade.ExitPrice),
			fmt.Sprintf("%.4f", trade.StopLoss),
			fmt.Sprintf("%.4f", trade.TakeProfit),
			fmt.Sprintf("%.4f", trade.PositionSize),
			pnlLabel,
			fmt.Sprintf("%.2f", trade.BalanceAfter),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
		{Number: 10, Align: text.AlignRight},
	})
	t.Render()
	if truncated > 0 {
		fmt.Printf("… %d more trades omitted\n", truncated)
	}
}
