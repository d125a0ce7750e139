package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const KDJID = "basic_kdj"

var KDJDescriptor = Descriptor{
	ID:          KDJID,
	DisplayName: "Basic KDJ",
	Description: "Buys when K crosses above D and sells when K crosses below D",
	Params: []ParamSpec{
		{Name: "n", Type: ParamTypeInt, Default: 9, Min: optional.Some(1.0), Max: optional.Some(30.0), Description: "RSV lookback period"},
		{Name: "m1", Type: ParamTypeInt, Default: 3, Min: optional.Some(1.0), Max: optional.Some(10.0), Description: "K smoothing factor"},
		{Name: "m2", Type: ParamTypeInt, Default: 3, Min: optional.Some(1.0), Max: optional.Some(10.0), Description: "D smoothing factor"},
	},
}

type KDJStrategy struct {
	base
	kdj indicator.Indicator
}

func NewKDJStrategy(params Params) (Strategy, error) {
	kdj := indicator.NewKDJ()
	if err := kdj.Config(params.Int("n"), params.Int("m1"), params.Int("m2")); err != nil {
		return nil, configError(KDJID, err)
	}

	return &KDJStrategy{base: newBase(KDJDescriptor, params), kdj: kdj}, nil
}

func (s *KDJStrategy) ComputeIndicators(frame *types.Frame) error {
	if err := s.kdj.Compute(frame); err != nil {
		return indicatorError(KDJID, err)
	}

	return nil
}

func (s *KDJStrategy) GenerateSignals(frame *types.Frame) error {
	k, err := column(frame, indicator.ColumnK, s.ComputeIndicators)
	if err != nil {
		return err
	}

	d, err := column(frame, indicator.ColumnD, s.ComputeIndicators)
	if err != nil {
		return err
	}

	frame.InitSignals()

	for i := range frame.Bars {
		switch {
		case indicator.CrossedAbove(k, d, i):
			frame.SetSignal(i, types.SignalBuy,
				fmt.Sprintf("KDJ buy (%s): K(%.2f) crossed above D(%.2f)", s.paramString(), k[i], d[i]), KDJID)
		case indicator.CrossedBelow(k, d, i):
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("KDJ sell (%s): K(%.2f) crossed below D(%.2f)", s.paramString(), k[i], d[i]), KDJID)
		}
	}

	return nil
}
