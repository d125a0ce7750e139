package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const ColumnRSI = "RSI"

// RSI is the relative strength index over rolling means of gains and losses.
//
// Values are 0 during warm-up. A window with no losses but some gains is
// saturated at 100, and a window with neither gains nor losses is 50.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14,
	}
}

func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if err := expectParams("RSI", params, "period (int)", 1); err != nil {
		return err
	}

	period, err := positivePeriod("period", params[0])
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

func (r *RSI) Columns() []string {
	return []string{ColumnRSI}
}

func (r *RSI) Compute(frame *types.Frame) error {
	return frame.SetColumn(ColumnRSI, r.values(types.Closes(frame.Bars)))
}

func (r *RSI) values(closes []float64) []float64 {
	delta := Diff(closes)
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))

	for i, d := range delta {
		// the first delta is undefined and counts as no change
		switch {
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}

	avgGain := SMA(gains, r.period)
	avgLoss := SMA(losses, r.period)

	out := make([]float64, len(closes))
	for i := range closes {
		gain, loss := avgGain[i], avgLoss[i]

		switch {
		case math.IsNaN(gain) || math.IsNaN(loss):
			out[i] = math.NaN()
		case loss == 0 && gain == 0:
			out[i] = 50
		case loss == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+gain/loss)
		}
	}

	return out
}
