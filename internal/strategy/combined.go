package strategy

import (
	"fmt"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const CombinedID = "combined_strategy"

var CombinedDescriptor = Descriptor{
	ID:          CombinedID,
	DisplayName: "Combined",
	Description: "Buys when every selected strategy buys and sells when any selected strategy sells",
	Params: []ParamSpec{
		{
			Name: "selected_strategies", Type: ParamTypeStringList, Default: []string{KDJID},
			Min: optional.None[float64](), Max: optional.None[float64](), Step: optional.None[float64](),
			Description: "Ids of the strategies to combine",
		},
		{
			Name: "strategy_params", Type: ParamTypeObject, Default: nil,
			Min: optional.None[float64](), Max: optional.None[float64](), Step: optional.None[float64](),
			Description: "Parameters keyed by strategy id",
		},
	},
}

type member struct {
	id         string
	descriptor Descriptor
	strategy   Strategy
}

// CombinedStrategy fuses several sources sharing one bar series.
type CombinedStrategy struct {
	base
	members []member
}

// NewCombinedConstructor returns a constructor that builds members through r.
func NewCombinedConstructor(r Registry) Constructor {
	return func(params Params) (Strategy, error) {
		selected := params.Strings("selected_strategies")
		if len(selected) == 0 {
			return nil, errors.New(errors.ErrCodeNoStrategiesSelected, "combined strategy needs at least one strategy")
		}

		perStrategy := params.Nested("strategy_params")
		members := make([]member, 0, len(selected))

		for _, id := range selected {
			if id == CombinedID {
				return nil, errors.Newf(errors.ErrCodeInvalidParameter, "%s cannot contain itself", CombinedID)
			}

			desc, err := r.Metadata(id)
			if err != nil {
				return nil, err
			}

			s, err := r.Create(id, perStrategy[id])
			if err != nil {
				return nil, err
			}

			members = append(members, member{id: id, descriptor: desc, strategy: s})
		}

		return &CombinedStrategy{base: newBase(CombinedDescriptor, params), members: members}, nil
	}
}

// CreateCombined builds a combined strategy from prefixed flat parameters,
// for example {"basic_kdj_n": 5, "rsi_rsi_period": 10}.
func CreateCombined(r Registry, selected []string, flat Params) (Strategy, error) {
	perStrategy, _ := SplitPrefixedParams(selected, flat)

	return r.Create(CombinedID, Params{
		"selected_strategies": selected,
		"strategy_params":     perStrategy,
	})
}

// Members returns the ids of the combined strategies in selection order.
func (s *CombinedStrategy) Members() []string {
	ids := make([]string, len(s.members))
	for i, m := range s.members {
		ids[i] = m.id
	}

	return ids
}

func (s *CombinedStrategy) ComputeIndicators(frame *types.Frame) error {
	for _, m := range s.members {
		if err := m.strategy.ComputeIndicators(frame); err != nil {
			return err
		}
	}

	return nil
}

// GenerateSignals evaluates Buy as a unanimous vote, then Sell as any vote.
// Sell overwrites Buy on the same bar. Members that leave no signal column
// abstain from both votes.
func (s *CombinedStrategy) GenerateSignals(frame *types.Frame) error {
	type vote struct {
		member
		frame *types.Frame
	}

	voters := make([]vote, 0, len(s.members))

	for _, m := range s.members {
		view := frame.View()
		if err := m.strategy.GenerateSignals(view); err != nil {
			return err
		}

		if !view.HasSignals() {
			continue
		}

		col := make([]float64, len(view.Signals))
		for i, sig := range view.Signals {
			col[i] = float64(sig)
		}

		if err := frame.SetColumn("signal_"+m.id, col); err != nil {
			return err
		}

		voters = append(voters, vote{member: m, frame: view})
	}

	frame.InitSignals()

	if len(voters) == 0 {
		return nil
	}

	selected := s.Members()

	for i := range frame.Bars {
		buy := true

		for _, v := range voters {
			if v.frame.Signals[i] != types.SignalBuy {
				buy = false

				break
			}
		}

		if buy {
			frame.SetSignal(i, types.SignalBuy, s.buyReason(), selected...)
		}

		var sellers []member

		for _, v := range voters {
			if v.frame.Signals[i] == types.SignalSell {
				sellers = append(sellers, v.member)
			}
		}

		if len(sellers) > 0 {
			ids := make([]string, len(sellers))
			for j, m := range sellers {
				ids[j] = m.id
			}

			frame.SetSignal(i, types.SignalSell, s.sellReason(sellers), ids...)
		}
	}

	return nil
}

func describe(members []member) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = fmt.Sprintf("%s (%s)", m.descriptor.DisplayName, m.strategy.Params().String(m.descriptor.Params...))
	}

	return strings.Join(parts, ", ")
}

func (s *CombinedStrategy) buyReason() string {
	return fmt.Sprintf("Combined buy: all of [%s] signalled buy", describe(s.members))
}

func (s *CombinedStrategy) sellReason(sellers []member) string {
	return fmt.Sprintf("Combined sell: [%s] signalled sell", describe(sellers))
}
