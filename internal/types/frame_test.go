package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type FrameTestSuite struct {
	suite.Suite
}

func TestFrameSuite(t *testing.T) {
	suite.Run(t, new(FrameTestSuite))
}

func bars(n int) []Bar {
	out := make([]Bar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range out {
		out[i] = Bar{Symbol: "600000", Time: start.AddDate(0, 0, i), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1000}
	}

	return out
}

func (suite *FrameTestSuite) TestSetColumnFillsWarmUp() {
	f := NewFrame(bars(3))
	suite.NoError(f.SetColumn("MA2", []float64{math.NaN(), 1.5, 2.5}))

	col, ok := f.Column("MA2")
	suite.True(ok)
	suite.Equal([]float64{0, 1.5, 2.5}, col)
}

func (suite *FrameTestSuite) TestSetColumnLengthMismatch() {
	f := NewFrame(bars(3))
	suite.Error(f.SetColumn("K", []float64{1, 2}))
}

func (suite *FrameTestSuite) TestColumnsKeepInsertionOrder() {
	f := NewFrame(bars(2))
	suite.NoError(f.SetColumn("K", []float64{1, 2}))
	suite.NoError(f.SetColumn("D", []float64{1, 2}))
	suite.NoError(f.SetColumn("K", []float64{3, 4}))
	suite.Equal([]string{"K", "D"}, f.Columns())
}

func (suite *FrameTestSuite) TestSignalsAbsentMeansHold() {
	f := NewFrame(bars(2))
	suite.False(f.HasSignals())
	suite.Equal(SignalHold, f.SignalAt(1).Signal)

	f.InitSignals()
	f.SetSignal(1, SignalBuy, "cross", "basic_kdj")
	suite.True(f.HasSignals())
	suite.Equal(CompositeSignal{Signal: SignalBuy, Sources: []string{"basic_kdj"}}, f.SignalAt(1))
	suite.Equal("cross", f.ReasonAt(1))
}

func (suite *FrameTestSuite) TestMerge() {
	a := NewFrame(bars(2))
	b := NewFrame(bars(2))
	suite.NoError(b.SetColumn("RSI", []float64{0, 55}))
	suite.NoError(a.Merge(b))

	col, ok := a.Column("RSI")
	suite.True(ok)
	suite.Equal(55.0, col[1])
}

func (suite *FrameTestSuite) TestViewSharesColumnsNotSignals() {
	f := NewFrame(bars(2))
	suite.NoError(f.SetColumn("K", []float64{1, 2}))
	f.InitSignals()
	f.SetSignal(1, SignalSell, "", "x")

	view := f.View()
	suite.False(view.HasSignals())

	col, ok := view.Column("K")
	suite.True(ok)
	suite.Equal([]float64{1, 2}, col)

	view.InitSignals()
	view.SetSignal(1, SignalBuy, "", "y")
	suite.Equal(SignalSell, f.SignalAt(1).Signal)
}
