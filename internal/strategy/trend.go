package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const SMA20ID = "sma20"

var SMA20Descriptor = Descriptor{
	ID:          SMA20ID,
	DisplayName: "SMA20 Trend",
	Description: "Follows the 20 bar moving average and its slope",
	Params:      nil,
}

type SMA20Strategy struct {
	base
	ma *indicator.MA
}

func NewSMA20Strategy(params Params) (Strategy, error) {
	ma, err := indicator.NewMAWithPeriod(20)
	if err != nil {
		return nil, configError(SMA20ID, err)
	}

	return &SMA20Strategy{base: newBase(SMA20Descriptor, params), ma: ma}, nil
}

func (s *SMA20Strategy) ComputeIndicators(frame *types.Frame) error {
	if err := s.ma.Compute(frame); err != nil {
		return indicatorError(SMA20ID, err)
	}

	return nil
}

// GenerateSignals buys when close crosses above MA20 while the average rises,
// and sells when close crosses below it or the average falls.
func (s *SMA20Strategy) GenerateSignals(frame *types.Frame) error {
	ma, err := column(frame, s.ma.Column(), s.ComputeIndicators)
	if err != nil {
		return err
	}

	slope, err := column(frame, s.ma.SlopeColumn(), s.ComputeIndicators)
	if err != nil {
		return err
	}

	closes := types.Closes(frame.Bars)
	frame.InitSignals()

	for i := 1; i < len(closes); i++ {
		crossedUp := indicator.CrossedAbove(closes, ma, i)
		crossedDown := indicator.CrossedBelow(closes, ma, i)

		switch {
		case crossedDown:
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("SMA20 sell: close(%.2f) crossed below MA20(%.2f)", closes[i], ma[i]), SMA20ID)
		case slope[i] < 0:
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("SMA20 sell: MA20 slope(%.4f) turned down", slope[i]), SMA20ID)
		case crossedUp && slope[i] > 0:
			frame.SetSignal(i, types.SignalBuy,
				fmt.Sprintf("SMA20 buy: close(%.2f) crossed above rising MA20(%.2f)", closes[i], ma[i]), SMA20ID)
		}
	}

	return nil
}
