package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const StopLossID = "short_term_stop_loss"

const (
	ExitReasonFixedStop = "fixed stop"
	ExitReasonTimeStop  = "time stop"
)

var StopLossDescriptor = Descriptor{
	ID:          StopLossID,
	DisplayName: "Short-term Stop Loss",
	Description: "Enters above the 5 bar average and exits on a fixed stop below the buy price or when a position fails to gain within a few bars",
	Params: []ParamSpec{
		{
			Name: "stop_loss_pct", Type: ParamTypeFloat, Default: 0.04,
			Min: optional.Some(0.03), Max: optional.Some(0.05), Step: optional.Some(0.005),
			Description: "Loss below the buy price that triggers the fixed stop",
		},
		{
			Name: "days_threshold", Type: ParamTypeInt, Default: 3,
			Min: optional.Some(1.0), Max: optional.None[float64](), Step: optional.None[float64](),
			Description: "Bars held before the time stop applies",
		},
		{
			Name: "min_profit_pct", Type: ParamTypeFloat, Default: 0.01,
			Min: optional.None[float64](), Max: optional.None[float64](), Step: optional.None[float64](),
			Description: "Gain required by the time stop",
		},
	},
}

type StopLossStrategy struct {
	base
	ma     *indicator.MA
	policy StopLossPolicy
}

func NewStopLossStrategy(params Params) (Strategy, error) {
	ma, err := indicator.NewMAWithPeriod(5)
	if err != nil {
		return nil, configError(StopLossID, err)
	}

	return &StopLossStrategy{
		base: newBase(StopLossDescriptor, params),
		ma:   ma,
		policy: StopLossPolicy{
			StopLossPct:   params.Float("stop_loss_pct"),
			DaysThreshold: params.Int("days_threshold"),
			MinProfitPct:  params.Float("min_profit_pct"),
		},
	}, nil
}

func (s *StopLossStrategy) ComputeIndicators(frame *types.Frame) error {
	if err := s.ma.Compute(frame); err != nil {
		return indicatorError(StopLossID, err)
	}

	return nil
}

// GenerateSignals only emits entries. Exits come from the execution policy.
func (s *StopLossStrategy) GenerateSignals(frame *types.Frame) error {
	ma, err := column(frame, s.ma.Column(), s.ComputeIndicators)
	if err != nil {
		return err
	}

	frame.InitSignals()

	for i := 1; i < len(frame.Bars); i++ {
		c := frame.Bars[i].Close
		// MA5 is 0 during warm-up
		if ma[i] > 0 && c > ma[i] {
			frame.SetSignal(i, types.SignalBuy,
				fmt.Sprintf("Stop-loss entry (%s): close(%.2f) above MA5(%.2f)", s.paramString(), c, ma[i]), StopLossID)
		}
	}

	return nil
}

func (s *StopLossStrategy) ExecutionPolicy() types.ExecutionPolicy {
	return s.policy
}

// StopLossPolicy enters only when flat and forces exits on a fixed or time stop.
type StopLossPolicy struct {
	StopLossPct   float64
	DaysThreshold int
	MinProfitPct  float64
}

func (p StopLossPolicy) AllowPyramiding() bool {
	return false
}

// ShouldExit checks the fixed stop first, so it wins when both hold.
func (p StopLossPolicy) ShouldExit(bar types.Bar, holding types.HoldingState) (bool, string) {
	if holding.EntryPrice <= 0 {
		return false, ""
	}

	if bar.Close <= holding.EntryPrice*(1-p.StopLossPct) {
		return true, ExitReasonFixedStop
	}

	change := (bar.Close - holding.EntryPrice) / holding.EntryPrice
	if holding.HoldingDays >= p.DaysThreshold && change < p.MinProfitPct {
		return true, ExitReasonTimeStop
	}

	return false, ""
}
