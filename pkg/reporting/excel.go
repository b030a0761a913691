package reporting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/llm-trading-bot/internal/backtest"
)

// WriteTradesXLSX writes the trade log and a summary sheet to an Excel
// workbook at path, creating parent directories as needed.
func WriteTradesXLSX(results *backtest.Results, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"
	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}
	currencyStyle, err := fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return err
	}

	if err := writeTradesSheet(fx, tradesSheet, results, headerStyle, currencyStyle); err != nil {
		return err
	}
	if err := writeSummarySheet(fx, summarySheet, results, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func writeTradesSheet(fx *excelize.File, sheet string, results *backtest.Results, headerStyle, currencyStyle int) error {
	headers := []string{"Entry Time", "Exit Time", "Signal", "Entry Price", "Exit Price",
		"Stop Loss", "Take Profit", "Size", "PnL", "Balance After"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := fx.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, trade := range results.Trades {
		row := i + 2
		values := []interface{}{
			trade.EntryTime.Format("2006-01-02 15:04:05"),
			trade.ExitTime.Format("2006-01-02 15:04:05"),
			string(trade.Signal),
			trade.EntryPrice,
			trade.ExitPrice,
			trade.StopLoss,
			trade.TakeProfit,
			trade.PositionSize,
			trade.PnL,
			trade.BalanceAfter,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		pnlCell, _ := excelize.CoordinatesToCellName(9, row)
		balanceCell, _ := excelize.CoordinatesToCellName(10, row)
		if err := fx.SetCellStyle(sheet, pnlCell, balanceCell, currencyStyle); err != nil {
			return err
		}
	}

	return fx.SetColWidth(sheet, "A", "B", 20)
}

func writeSummarySheet(fx *excelize.File, sheet string, results *backtest.Results, headerStyle int) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Initial Balance", results.StartBalance},
		{"Final Balance", results.EndBalance},
		{"Total Trades", results.TotalTrades},
		{"Win Rate", results.WinRate},
		{"Average Win", results.AverageWin},
		{"Average Loss", results.AverageLoss},
		{"Profit Factor", metricCellValue(results.ProfitFactor)},
		{"Sharpe Ratio", metricCellValue(results.SharpeRatio)},
		{"Max Drawdown", results.MaxDrawdown},
	}
	for i, pair := range rows {
		for col, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := fx.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return fx.SetColWidth(sheet, "A", "A", 18)
}

// metricCellValue keeps non-finite ratios out of numeric cells. An
// infinite profit factor would otherwise corrupt the workbook.
func metricCellValue(v float64) interface{} {
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1), math.IsNaN(v):
		return "n/a"
	default:
		return v
	}
}
