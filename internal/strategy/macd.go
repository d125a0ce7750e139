package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const MACDID = "macd"

var MACDDescriptor = Descriptor{
	ID:          MACDID,
	DisplayName: "MACD Momentum",
	Description: "Buys on a DIF/DEA golden cross above the zero line; sells on a dead cross or a negative histogram",
	Params:      nil,
}

type MACDStrategy struct {
	base
	macd indicator.Indicator
}

func NewMACDStrategy(params Params) (Strategy, error) {
	macd := indicator.NewMACD()
	if err := macd.Config(12, 26, 9); err != nil {
		return nil, configError(MACDID, err)
	}

	return &MACDStrategy{base: newBase(MACDDescriptor, params), macd: macd}, nil
}

func (s *MACDStrategy) ComputeIndicators(frame *types.Frame) error {
	if err := s.macd.Compute(frame); err != nil {
		return indicatorError(MACDID, err)
	}

	return nil
}

func (s *MACDStrategy) GenerateSignals(frame *types.Frame) error {
	dif, err := column(frame, indicator.ColumnMACDDIF, s.ComputeIndicators)
	if err != nil {
		return err
	}

	dea, err := column(frame, indicator.ColumnMACDDEA, s.ComputeIndicators)
	if err != nil {
		return err
	}

	bar, err := column(frame, indicator.ColumnMACDBar, s.ComputeIndicators)
	if err != nil {
		return err
	}

	frame.InitSignals()

	for i := 1; i < len(frame.Bars); i++ {
		switch {
		case indicator.CrossedBelow(dif, dea, i):
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("MACD sell: DIF(%.3f) crossed below DEA(%.3f)", dif[i], dea[i]), MACDID)
		case bar[i] < 0:
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("MACD sell: BAR(%.3f) below zero", bar[i]), MACDID)
		case indicator.CrossedAbove(dif, dea, i) && bar[i] > 0:
			frame.SetSignal(i, types.SignalBuy,
				fmt.Sprintf("MACD buy: DIF(%.3f) crossed above DEA(%.3f) with BAR(%.3f) above zero", dif[i], dea[i], bar[i]), MACDID)
		}
	}

	return nil
}
