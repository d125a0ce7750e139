package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type SourcesTestSuite struct {
	suite.Suite
	registry Registry
}

func TestSourcesSuite(t *testing.T) {
	suite.Run(t, new(SourcesTestSuite))
}

func (suite *SourcesTestSuite) SetupSuite() {
	r, err := NewDefaultRegistry()
	suite.Require().NoError(err)
	suite.registry = r
}

func (suite *SourcesTestSuite) prepare(id string, params Params, bars []types.Bar) *types.Frame {
	s, err := suite.registry.Create(id, params)
	suite.Require().NoError(err)

	frame, err := Prepare(s, bars)
	suite.Require().NoError(err)
	suite.Require().True(frame.HasSignals())
	suite.Require().Len(frame.Signals, len(bars))
	suite.Equal(types.SignalHold, frame.Signals[0], "first bar never signals")

	return frame
}

func (suite *SourcesTestSuite) TestKDJSingleCrossUpThenDown() {
	frame := suite.prepare(KDJID, nil, barsFromCloses(valleyThenPeak()...))

	suite.Equal([]int{10}, signalIndexes(frame, types.SignalBuy))
	suite.Equal([]int{21}, signalIndexes(frame, types.SignalSell))
	suite.Equal([]string{KDJID}, frame.SignalAt(10).Sources)
	suite.Contains(frame.ReasonAt(10), "KDJ buy (n=9, m1=3, m2=3)")
	suite.Contains(frame.ReasonAt(21), "crossed below")

	suite.Equal([]string{indicator.ColumnK, indicator.ColumnD, indicator.ColumnJ}, frame.Columns())
}

func (suite *SourcesTestSuite) TestSMA20() {
	closes := make([]float64, 0, 24)
	for i := 0; i < 21; i++ {
		closes = append(closes, 10)
	}

	// falls through the average, then jumps back above it
	closes = append(closes, 9, 12, 12)

	frame := suite.prepare(SMA20ID, nil, barsFromCloses(closes...))

	suite.Equal([]int{21}, signalIndexes(frame, types.SignalSell))
	suite.Equal([]int{22}, signalIndexes(frame, types.SignalBuy))

	ma, ok := frame.Column("MA20")
	suite.True(ok)
	suite.Equal(0.0, ma[18])
	suite.InDelta(10.05, ma[22], 1e-9)
}

func (suite *SourcesTestSuite) TestVolume() {
	bars := barsFromCloses(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 11, 11, 10)
	for i := range bars {
		bars[i].Volume = 100
	}

	// warm-up: no average yet, so no signal
	bars[1].Volume = 10000
	bars[1].Open = 9
	// expansion on a rising bar
	bars[10].Volume = 200
	bars[10].Open = 10
	// extreme volume
	bars[11].Volume = 1000
	// contraction on a falling bar
	bars[12].Volume = 20
	bars[12].Open = 11

	frame := suite.prepare(VolumeID, nil, bars)

	suite.Equal(types.SignalHold, frame.Signals[1])
	suite.Equal(types.SignalBuy, frame.Signals[10])
	suite.Equal(types.SignalSell, frame.Signals[11])
	suite.Contains(frame.ReasonAt(11), "extreme volume")
	suite.Equal(types.SignalSell, frame.Signals[12])
	suite.Contains(frame.ReasonAt(12), "shrinking volume")
}

func (suite *SourcesTestSuite) TestVolumeFactor() {
	bars := barsFromCloses(10, 10, 10, 10, 10, 11)
	for i := range bars {
		bars[i].Volume = 100
	}

	bars[5].Volume = 200
	bars[5].Open = 10

	// ratio is 200/120 = 1.67
	suite.Equal(types.SignalBuy, suite.prepare(VolumeID, Params{"volume_factor": 1.5}, bars).Signals[5])
	suite.Equal(types.SignalHold, suite.prepare(VolumeID, Params{"volume_factor": 2.0}, bars).Signals[5])
}

func (suite *SourcesTestSuite) TestMACDRules() {
	frame := suite.prepare(MACDID, nil, barsFromCloses(valleyThenPeak()...))

	bar, ok := frame.Column(indicator.ColumnMACDBar)
	suite.Require().True(ok)

	suite.Equal([]int{14}, signalIndexes(frame, types.SignalBuy))
	suite.Greater(bar[14], 0.0)

	for i := 1; i < len(bar); i++ {
		if bar[i] < 0 {
			suite.Equal(types.SignalSell, frame.Signals[i], "bar %d", i)
		}
	}
}

func (suite *SourcesTestSuite) TestRSI() {
	closes := make([]float64, 0, 21)
	for i := 0; i < 7; i++ {
		closes = append(closes, float64(20-i))
	}

	for i := 7; i < 14; i++ {
		closes = append(closes, float64(14+i-6))
	}

	for i := 14; i < 21; i++ {
		closes = append(closes, float64(20-(i-13)))
	}

	frame := suite.prepare(RSIID, Params{"rsi_period": 6}, barsFromCloses(closes...))

	suite.Equal([]int{8}, signalIndexes(frame, types.SignalBuy))
	suite.Equal([]int{15}, signalIndexes(frame, types.SignalSell))

	rsi, _ := frame.Column(indicator.ColumnRSI)
	suite.Equal(100.0, rsi[12])
	suite.Equal(0.0, rsi[3])
}

func (suite *SourcesTestSuite) TestRSIThresholdOrder() {
	_, err := suite.registry.Create(RSIID, Params{"oversold_threshold": 40, "overbought_threshold": 60})
	suite.NoError(err)

	_, err = NewRSIStrategy(Params{"rsi_period": 14, "oversold_threshold": 70, "overbought_threshold": 60})
	suite.Error(err)
}

func (suite *SourcesTestSuite) TestStopLossEntries() {
	frame := suite.prepare(StopLossID, nil, barsFromCloses(10, 10, 10, 10, 10, 11, 10, 9))

	// MA5 is undefined before bar 4; bar 4 equals its average
	suite.Equal([]int{5}, signalIndexes(frame, types.SignalBuy))
	suite.Empty(signalIndexes(frame, types.SignalSell))
}

func (suite *SourcesTestSuite) TestStopLossPolicy() {
	s, err := suite.registry.Create(StopLossID, nil)
	suite.Require().NoError(err)

	policy := PolicyOf(s)
	suite.False(policy.AllowPyramiding())

	testCases := []struct {
		name   string
		close  float64
		days   int
		exit   bool
		reason string
	}{
		{name: "fixed stop at the boundary", close: 96, days: 1, exit: true, reason: ExitReasonFixedStop},
		{name: "fixed stop wins over time stop", close: 90, days: 5, exit: true, reason: ExitReasonFixedStop},
		{name: "time stop", close: 100.5, days: 3, exit: true, reason: ExitReasonTimeStop},
		{name: "too early for time stop", close: 100.5, days: 2, exit: false},
		{name: "enough profit", close: 101, days: 3, exit: false},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			exit, reason := policy.ShouldExit(types.Bar{Close: tc.close}, types.HoldingState{EntryPrice: 100, Quantity: 100, HoldingDays: tc.days})
			suite.Equal(tc.exit, exit)
			suite.Equal(tc.reason, reason)
		})
	}
}

func (suite *SourcesTestSuite) TestDefaultPolicyForPlainSources() {
	s, err := suite.registry.Create(KDJID, nil)
	suite.Require().NoError(err)
	suite.True(PolicyOf(s).AllowPyramiding())
}
