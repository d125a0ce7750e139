package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) TestMaxDrawdown() {
	testCases := []struct {
		name     string
		equity   []float64
		expected float64
	}{
		{name: "empty", equity: nil, expected: 0},
		{name: "rising", equity: []float64{100, 110, 120}, expected: 0},
		{name: "single drop", equity: []float64{100, 120, 90, 130}, expected: 0.25},
		{name: "deepest wins", equity: []float64{100, 80, 200, 100}, expected: 0.5},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, MaxDrawdown(tc.equity), 1e-12)
		})
	}
}

func (suite *MetricsTestSuite) TestCalculateMetrics() {
	trades := []Trade{
		{Side: SideBuy, Cost: TradingCost{Total: 5}},
		{Side: SideSell, Cost: TradingCost{Total: 6}, PositionProfit: 10},
		{Side: SideBuy, Cost: TradingCost{Total: 5}},
		{Side: SideSell, Cost: TradingCost{Total: 6}, PositionProfit: -3},
	}
	b := []Bar{{Close: 10}, {Close: 12}}

	m := CalculateMetrics(trades, []float64{100, 90}, b)
	suite.Equal(4, m.NumberOfTrades)
	suite.Equal(2, m.NumberOfSells)
	suite.InDelta(0.5, m.WinRate, 1e-12)
	suite.InDelta(22.0, m.TotalCost, 1e-12)
	suite.InDelta(0.2, m.BuyAndHoldReturn, 1e-12)
	suite.InDelta(0.1, m.MaxDrawdown, 1e-12)
}

func (suite *MetricsTestSuite) TestCalculateMetricsNoSells() {
	m := CalculateMetrics(nil, nil, nil)
	suite.Equal(0.0, m.WinRate)
	suite.Equal(0, m.NumberOfTrades)
}
