package bot

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

func (bot *LiveBot) printStartupInfo(account types.AccountSnapshot) {
	environment := "mainnet"
	if bot.cfg.Exchange.Demo {
		environment = "demo"
	} else if bot.cfg.Exchange.Testnet {
		environment = "testnet"
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("🤖 LLM TRADING BOT")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbol", bot.cfg.Trading.Symbol},
		{"⏱️ Timeframes", fmt.Sprintf("%s / %s", bot.cfg.Trading.PrimaryTimeframe, bot.cfg.Trading.SecondaryTimeframe)},
		{"🌐 Environment", environment},
		{"🧠 Oracle Model", bot.cfg.Oracle.Model},
		{"🔄 Cycle Interval", bot.cfg.Trading.CycleInterval.String()},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"💰 Balance", fmt.Sprintf("$%.2f", account.Balance)},
		{"📈 Equity", fmt.Sprintf("$%.2f", account.Equity)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🛡️ Risk Per Trade", fmt.Sprintf("%.2f%%", bot.cfg.Risk.MaxRiskPerTrade*100)},
		{"📉 Max Drawdown", fmt.Sprintf("%.0f%%", bot.cfg.Risk.MaxDrawdownFraction*100)},
		{"🔢 Max Positions", fmt.Sprintf("%d", bot.cfg.Risk.MaxSimultaneousPositions)},
		{"📅 Max Daily Trades", dailyTradesLabel(bot.cfg.Trading.MaxDailyTrades)},
		{"🚫 No-Trade Hours", hoursLabel(bot.cfg.Risk.NoTradeHours)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
	fmt.Println()
}

func (bot *LiveBot) printDecision(d types.TradingDecision, entryPrice, size float64) {
	signalLabel := "🟢 BUY"
	if d.Signal == types.SignalSell {
		signalLabel = "🔴 SELL"
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("⚡ TRADE DECISION")
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Signal", signalLabel},
		{"Entry", fmt.Sprintf("$%.4f", entryPrice)},
		{"Stop Loss", fmt.Sprintf("$%.4f", d.StopLoss)},
		{"Take Profit", fmt.Sprintf("$%.4f", d.TakeProfit)},
		{"Size", fmt.Sprintf("%.4f", size)},
	})
	if d.Explanation != "" {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Reason", wrapText(d.Explanation, 50)})
	}
	t.Render()
	fmt.Println()
}

func dailyTradesLabel(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}

func hoursLabel(hours []int) string {
	if len(hours) == 0 {
		return "none"
	}
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}

func wrapText(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				b.WriteByte('\n')
				lineLen = 0
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}
