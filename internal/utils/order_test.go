package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestCalculateMaxLots() {
	tests := []struct {
		name         string
		cash         float64
		price        float64
		ratio        float64
		lotSize      int64
		expectedLots int64
	}{
		{name: "Exact fit", cash: 100000, price: 10, ratio: 1, lotSize: 100, expectedLots: 100},
		{name: "Rounded down", cash: 100000, price: 11, ratio: 1, lotSize: 100, expectedLots: 90},
		{name: "Position ratio", cash: 100000, price: 10, ratio: 0.5, lotSize: 100, expectedLots: 50},
		{name: "Less than one lot", cash: 999, price: 10, ratio: 1, lotSize: 100, expectedLots: 0},
		{name: "Zero cash", cash: 0, price: 10, ratio: 1, lotSize: 100, expectedLots: 0},
		{name: "Zero price", cash: 1000, price: 0, ratio: 1, lotSize: 100, expectedLots: 0},
		{name: "Negative ratio", cash: 1000, price: 1, ratio: -1, lotSize: 100, expectedLots: 0},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			lots := CalculateMaxLots(tt.cash, tt.price, tt.ratio, tt.lotSize)
			suite.Equal(tt.expectedLots, lots)
			suite.Equal(tt.expectedLots*tt.lotSize, CalculateOrderQuantity(tt.cash, tt.price, tt.ratio, tt.lotSize))
		})
	}
}

func (suite *UtilsTestSuite) TestRoundDownToLot() {
	suite.Equal(int64(300), RoundDownToLot(350, 100))
	suite.Equal(int64(0), RoundDownToLot(99, 100))
	suite.Equal(int64(0), RoundDownToLot(500, 0))
	suite.Equal(int64(0), RoundDownToLot(-100, 100))
}
