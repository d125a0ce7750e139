package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const RSIID = "rsi"

var RSIDescriptor = Descriptor{
	ID:          RSIID,
	DisplayName: "RSI",
	Description: "Buys when RSI recovers above the oversold level and sells when it falls back below the overbought level",
	Params: []ParamSpec{
		{
			Name: "rsi_period", Type: ParamTypeInt, Default: 14,
			Min: optional.Some(6.0), Max: optional.Some(24.0), Step: optional.Some(2.0),
			Description: "RSI lookback period",
		},
		{
			Name: "oversold_threshold", Type: ParamTypeInt, Default: 30,
			Min: optional.Some(10.0), Max: optional.Some(40.0), Step: optional.Some(5.0),
			Description: "Oversold level",
		},
		{
			Name: "overbought_threshold", Type: ParamTypeInt, Default: 70,
			Min: optional.Some(60.0), Max: optional.Some(90.0), Step: optional.Some(5.0),
			Description: "Overbought level",
		},
	},
}

type RSIStrategy struct {
	base
	rsi        indicator.Indicator
	oversold   float64
	overbought float64
}

func NewRSIStrategy(params Params) (Strategy, error) {
	rsi := indicator.NewRSI()
	if err := rsi.Config(params.Int("rsi_period")); err != nil {
		return nil, configError(RSIID, err)
	}

	oversold := params.Float("oversold_threshold")
	overbought := params.Float("overbought_threshold")

	if oversold >= overbought {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"strategy %s: oversold_threshold %v must be below overbought_threshold %v", RSIID, oversold, overbought)
	}

	return &RSIStrategy{
		base:       newBase(RSIDescriptor, params),
		rsi:        rsi,
		oversold:   oversold,
		overbought: overbought,
	}, nil
}

func (s *RSIStrategy) ComputeIndicators(frame *types.Frame) error {
	if err := s.rsi.Compute(frame); err != nil {
		return indicatorError(RSIID, err)
	}

	return nil
}

func (s *RSIStrategy) GenerateSignals(frame *types.Frame) error {
	rsi, err := column(frame, indicator.ColumnRSI, s.ComputeIndicators)
	if err != nil {
		return err
	}

	frame.InitSignals()

	for i := range frame.Bars {
		switch {
		case indicator.CrossedBelowLevel(rsi, s.overbought, i):
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("RSI sell (%s): RSI(%.2f) fell below %v", s.paramString(), rsi[i], s.overbought), RSIID)
		case indicator.CrossedAboveLevel(rsi, s.oversold, i):
			frame.SetSignal(i, types.SignalBuy,
				fmt.Sprintf("RSI buy (%s): RSI(%.2f) recovered above %v", s.paramString(), rsi[i], s.oversold), RSIID)
		}
	}

	return nil
}
