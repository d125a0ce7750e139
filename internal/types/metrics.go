package types

// PerformanceMetrics summarizes one run.
type PerformanceMetrics struct {
	// MaxDrawdown is the largest peak-to-trough fall of the equity curve as a fraction of the peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// WinRate is the share of sell trades with positive position profit.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// NumberOfTrades counts buys and sells.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// NumberOfSells counts closed round trips.
	NumberOfSells int `yaml:"number_of_sells" json:"number_of_sells"`
	// TotalCost is the sum of all trading costs.
	TotalCost float64 `yaml:"total_cost" json:"total_cost"`
	// BuyAndHoldReturn is close[last]/close[first] - 1.
	BuyAndHoldReturn float64 `yaml:"buy_and_hold_return" json:"buy_and_hold_return"`
}

// CalculateMetrics derives the metrics from a trade log, equity curve and bars.
func CalculateMetrics(trades []Trade, equity []float64, bars []Bar) PerformanceMetrics {
	metrics := PerformanceMetrics{
		MaxDrawdown:      MaxDrawdown(equity),
		WinRate:          0,
		NumberOfTrades:   len(trades),
		NumberOfSells:    0,
		TotalCost:        0,
		BuyAndHoldReturn: 0,
	}

	wins := 0

	for _, t := range trades {
		metrics.TotalCost += t.Cost.Total

		if t.Side != SideSell {
			continue
		}

		metrics.NumberOfSells++

		if t.PositionProfit > 0 {
			wins++
		}
	}

	if metrics.NumberOfSells > 0 {
		metrics.WinRate = float64(wins) / float64(metrics.NumberOfSells)
	}

	if len(bars) > 0 && bars[0].Close > 0 {
		metrics.BuyAndHoldReturn = bars[len(bars)-1].Close/bars[0].Close - 1
	}

	return metrics
}

// MaxDrawdown returns the largest fractional drop from a running peak.
func MaxDrawdown(equity []float64) float64 {
	peak := 0.0
	maxDD := 0.0

	for _, v := range equity {
		if v > peak {
			peak = v
		}

		if peak <= 0 {
			continue
		}

		if dd := (peak - v) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}
