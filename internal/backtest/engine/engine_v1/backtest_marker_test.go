package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type BacktestMarkerTestSuite struct {
	suite.Suite
	marker *BacktestMarker
	bar    types.Bar
}

func TestBacktestMarkerSuite(t *testing.T) {
	suite.Run(t, new(BacktestMarkerTestSuite))
}

func (suite *BacktestMarkerTestSuite) SetupTest() {
	suite.marker = NewBacktestMarker()
	suite.bar = types.Bar{
		Time:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Symbol: "600000",
		Open:   10,
		High:   10.8,
		Low:    9.6,
		Close:  10.2,
		Volume: 5000,
	}
}

func (suite *BacktestMarkerTestSuite) trade(side types.Side, reason string) types.Trade {
	return types.Trade{
		ID:       "trade",
		Time:     suite.bar.Time,
		Side:     side,
		Price:    suite.bar.Close,
		Quantity: 100,
		Reason:   optional.Some(reason),
	}
}

func (suite *BacktestMarkerTestSuite) TestMarkStyles() {
	testCases := []struct {
		name   string
		side   types.Side
		forced bool
		want   types.Mark
	}{
		{
			name: "buy", side: types.SideBuy, forced: false,
			want: types.Mark{Price: 9.6, Signal: types.SignalBuy, Color: types.MarkColorGreen, Shape: types.MarkShapeTriangleUp, Title: "B"},
		},
		{
			name: "signal sell", side: types.SideSell, forced: false,
			want: types.Mark{Price: 10.8, Signal: types.SignalSell, Color: types.MarkColorRed, Shape: types.MarkShapeTriangleDown, Title: "S"},
		},
		{
			name: "forced exit", side: types.SideSell, forced: true,
			want: types.Mark{Price: 10.8, Signal: types.SignalSell, Color: types.MarkColorOrange, Shape: types.MarkShapeCross, Title: "X"},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.marker.Cleanup()
			suite.Require().NoError(suite.marker.Mark(suite.bar, suite.trade(tc.side, tc.name), tc.forced))

			marks, err := suite.marker.GetMarks()
			suite.Require().NoError(err)
			suite.Require().Len(marks, 1)

			want := tc.want
			want.Time = suite.bar.Time
			want.Message = tc.name
			suite.Equal(want, marks[0])
		})
	}
}

func (suite *BacktestMarkerTestSuite) TestGetMarksReturnsCopy() {
	suite.Require().NoError(suite.marker.Mark(suite.bar, suite.trade(types.SideBuy, "a"), false))

	marks, err := suite.marker.GetMarks()
	suite.Require().NoError(err)
	marks[0].Title = "changed"

	again, err := suite.marker.GetMarks()
	suite.Require().NoError(err)
	suite.Equal("B", again[0].Title)
}

func (suite *BacktestMarkerTestSuite) TestCleanup() {
	suite.Require().NoError(suite.marker.Mark(suite.bar, suite.trade(types.SideBuy, "a"), false))
	suite.Require().NoError(suite.marker.Mark(suite.bar, suite.trade(types.SideSell, "b"), false))

	marks, err := suite.marker.GetMarks()
	suite.Require().NoError(err)
	suite.Len(marks, 2)

	suite.marker.Cleanup()

	marks, err = suite.marker.GetMarks()
	suite.Require().NoError(err)
	suite.Empty(marks)
}

func (suite *BacktestMarkerTestSuite) TestNilMarker() {
	var marker *BacktestMarker

	suite.Error(marker.Mark(suite.bar, suite.trade(types.SideBuy, "a"), false))

	_, err := marker.GetMarks()
	suite.Error(err)
}
