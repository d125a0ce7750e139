package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// VolumeMA writes simple moving averages of volume, one column per period
// named MA_V{period}.
type VolumeMA struct {
	periods []int
}

func NewVolumeMA() Indicator {
	return &VolumeMA{periods: []int{5, 10}}
}

func (v *VolumeMA) Name() types.IndicatorType {
	return types.IndicatorTypeVolumeMA
}

// Expected parameters: one or more periods (int).
func (v *VolumeMA) Config(params ...any) error {
	if len(params) == 0 {
		return expectParams("VolumeMA", params, "periods (int...)", 1)
	}

	periods := make([]int, 0, len(params))

	for _, p := range params {
		period, err := positivePeriod("period", p)
		if err != nil {
			return err
		}

		periods = append(periods, period)
	}

	v.periods = periods

	return nil
}

// VolumeColumn returns the column name for a volume average period.
func VolumeColumn(period int) string {
	return fmt.Sprintf("MA_V%d", period)
}

func (v *VolumeMA) Columns() []string {
	out := make([]string, len(v.periods))
	for i, p := range v.periods {
		out[i] = VolumeColumn(p)
	}

	return out
}

func (v *VolumeMA) Compute(frame *types.Frame) error {
	volumes := types.Volumes(frame.Bars)

	for _, p := range v.periods {
		if err := frame.SetColumn(VolumeColumn(p), SMA(volumes, p)); err != nil {
			return err
		}
	}

	return nil
}
