// Package strategy holds the signal sources, the composer that fuses them
// and the registry that builds them from declared parameters.
package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Strategy turns a bar series into per-bar signals.
type Strategy interface {
	// ID returns the registry id the strategy was built from.
	ID() string
	// Params returns the effective parameters after defaults were applied.
	Params() Params
	// ComputeIndicators writes the strategy's indicator columns into frame.
	ComputeIndicators(frame *types.Frame) error
	// GenerateSignals fills frame's signal column from the indicator columns.
	// Leaving the column unset means the strategy abstains.
	GenerateSignals(frame *types.Frame) error
}

// PolicyProvider is implemented by strategies that change how the engine
// executes their signals.
type PolicyProvider interface {
	ExecutionPolicy() types.ExecutionPolicy
}

// PolicyOf returns s's execution policy, or the default policy.
func PolicyOf(s Strategy) types.ExecutionPolicy {
	if p, ok := s.(PolicyProvider); ok {
		if policy := p.ExecutionPolicy(); policy != nil {
			return policy
		}
	}

	return types.DefaultExecutionPolicy{}
}

// Prepare computes indicators and signals of s over bars.
func Prepare(s Strategy, bars []types.Bar) (*types.Frame, error) {
	frame := types.NewFrame(bars)

	if err := s.ComputeIndicators(frame); err != nil {
		return nil, err
	}

	if err := s.GenerateSignals(frame); err != nil {
		return nil, err
	}

	return frame, nil
}
