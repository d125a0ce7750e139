package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Indicator computes one or more columns over a whole bar series.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters.
	Config(params ...any) error
	// Columns returns the names of the columns Compute writes.
	Columns() []string
	// Compute writes the indicator columns into frame.
	Compute(frame *types.Frame) error
}

// ComputeAll runs indicators in order against frame.
func ComputeAll(frame *types.Frame, indicators ...Indicator) error {
	for _, ind := range indicators {
		if err := ind.Compute(frame); err != nil {
			return err
		}
	}

	return nil
}
