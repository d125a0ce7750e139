package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// MA is the simple moving average of close together with its slope.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20, // Default period
	}
}

// NewMAWithPeriod creates a MA over period bars.
func NewMAWithPeriod(period int) (*MA, error) {
	ma := &MA{period: 20}
	if err := ma.Config(period); err != nil {
		return nil, err
	}

	return ma, nil
}

func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if err := expectParams("MA", params, "period (int)", 1); err != nil {
		return err
	}

	period, err := positivePeriod("period", params[0])
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

// Column is the name of the moving average column, for example MA20.
func (m *MA) Column() string {
	return fmt.Sprintf("MA%d", m.period)
}

// SlopeColumn is the name of the slope column, for example ma20_slope.
func (m *MA) SlopeColumn() string {
	return fmt.Sprintf("ma%d_slope", m.period)
}

func (m *MA) Columns() []string {
	return []string{m.Column(), m.SlopeColumn()}
}

// Compute writes the average and its first difference. The slope is 0
// until two averages are defined.
func (m *MA) Compute(frame *types.Frame) error {
	ma := SMA(types.Closes(frame.Bars), m.period)

	if err := frame.SetColumn(m.Column(), ma); err != nil {
		return err
	}

	return frame.SetColumn(m.SlopeColumn(), Diff(ma))
}
