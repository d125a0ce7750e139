package summary

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TradeColumns are the headers of the trade summary table.
var TradeColumns = []string{
	"Date",
	"Type",
	"Price",
	"Quantity",
	"Cost",
	"Stock Value",
	"Position Profit",
	"Reason",
	"Total Asset",
}

// TradeRows formats one row per trade in the order of TradeColumns.
func TradeRows(trades []types.Trade) [][]string {
	rows := make([][]string, 0, len(trades))

	for _, t := range trades {
		rows = append(rows, []string{
			t.Time.Format(dateLayout),
			sideLabel(t.Side),
			Money(t.Price),
			fmt.Sprintf("%d", t.Quantity),
			Money(t.Cost.Total),
			Money(t.StockValue),
			Money(t.PositionProfit),
			t.ReasonOrEmpty(),
			Money(t.TotalAsset),
		})
	}

	return rows
}

// Metric is one labeled line of the run overview.
type Metric struct {
	Label string
	Value string
}

// Metrics lists the headline numbers of a run.
func Metrics(result *types.BacktestResult) []Metric {
	if result == nil {
		return nil
	}

	m := result.Metrics

	return []Metric{
		{Label: "Strategy", Value: strategyLabel(result.Strategy)},
		{Label: "Symbol", Value: result.Symbol},
		{Label: "Bars", Value: fmt.Sprintf("%d", len(result.EquityCurve))},
		{Label: "Initial Equity", Value: Money(result.InitialEquity)},
		{Label: "Final Equity", Value: Money(result.FinalEquity)},
		{Label: "Return", Value: Percent(result.ReturnRate)},
		{Label: "Buy & Hold", Value: Percent(m.BuyAndHoldReturn)},
		{Label: "Max Drawdown", Value: Percent(m.MaxDrawdown)},
		{Label: "Win Rate", Value: Percent(m.WinRate)},
		{Label: "Trades", Value: fmt.Sprintf("%d (%d sells)", m.NumberOfTrades, m.NumberOfSells)},
		{Label: "Total Cost", Value: Money(m.TotalCost)},
	}
}

// Money rounds v to two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Percent renders a fraction as a percentage with two decimals.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

func sideLabel(side types.Side) string {
	switch side {
	case types.SideBuy:
		return "BUY"
	case types.SideSell:
		return "SELL"
	default:
		return strings.ToUpper(string(side))
	}
}

func strategyLabel(info types.StrategyInfo) string {
	if info.Name == "" || info.Name == info.ID {
		return info.ID
	}

	return fmt.Sprintf("%s (%s)", info.Name, info.ID)
}
