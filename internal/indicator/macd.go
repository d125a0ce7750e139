package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const (
	ColumnMACDDIF = "MACD_DIF"
	ColumnMACDDEA = "MACD_DEA"
	ColumnMACDBar = "MACD_BAR"
)

// MACD writes DIF = EMA(fast) - EMA(slow), DEA = EMA(DIF, signal) and
// BAR = 2 * (DIF - DEA).
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default periods 12, 26 and 9.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if err := expectParams("MACD", params, "fastPeriod (int), slowPeriod (int), signalPeriod (int)", 3); err != nil {
		return err
	}

	fast, err := positivePeriod("fastPeriod", params[0])
	if err != nil {
		return err
	}

	slow, err := positivePeriod("slowPeriod", params[1])
	if err != nil {
		return err
	}

	signal, err := positivePeriod("signalPeriod", params[2])
	if err != nil {
		return err
	}

	m.fastPeriod, m.slowPeriod, m.signalPeriod = fast, slow, signal

	return nil
}

func (m *MACD) Columns() []string {
	return []string{ColumnMACDDIF, ColumnMACDDEA, ColumnMACDBar}
}

func (m *MACD) Compute(frame *types.Frame) error {
	closes := types.Closes(frame.Bars)
	fast := EMA(closes, m.fastPeriod)
	slow := EMA(closes, m.slowPeriod)

	dif := make([]float64, len(closes))
	for i := range closes {
		dif[i] = fast[i] - slow[i]
	}

	dea := EMA(dif, m.signalPeriod)

	bar := make([]float64, len(closes))
	for i := range closes {
		bar[i] = 2 * (dif[i] - dea[i])
	}

	if err := frame.SetColumn(ColumnMACDDIF, dif); err != nil {
		return err
	}

	if err := frame.SetColumn(ColumnMACDDEA, dea); err != nil {
		return err
	}

	return frame.SetColumn(ColumnMACDBar, bar)
}
