package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const (
	ColumnK = "K"
	ColumnD = "D"
	ColumnJ = "J"
)

// KDJ is the stochastic oscillator with smoothed K and D lines.
//
//	RSV = (close - lowest low over n) / (highest high over n - lowest low) * 100
//	K   = EWM(RSV, 1/m1)
//	D   = EWM(K, 1/m2)
//	J   = 3K - 2D
type KDJ struct {
	n  int
	m1 int
	m2 int
}

func NewKDJ() Indicator {
	return &KDJ{n: 9, m1: 3, m2: 3}
}

// Expected parameters: n (int), m1 (int), m2 (int).
func (k *KDJ) Config(params ...any) error {
	if err := expectParams("KDJ", params, "n (int), m1 (int), m2 (int)", 3); err != nil {
		return err
	}

	n, err := positivePeriod("n", params[0])
	if err != nil {
		return err
	}

	m1, err := positivePeriod("m1", params[1])
	if err != nil {
		return err
	}

	m2, err := positivePeriod("m2", params[2])
	if err != nil {
		return err
	}

	k.n, k.m1, k.m2 = n, m1, m2

	return nil
}

func (k *KDJ) Name() types.IndicatorType {
	return types.IndicatorTypeKDJ
}

func (k *KDJ) Columns() []string {
	return []string{ColumnK, ColumnD, ColumnJ}
}

// Compute writes K, D and J. A window with no range leaves RSV undefined.
func (k *KDJ) Compute(frame *types.Frame) error {
	closes := types.Closes(frame.Bars)
	lowN := RollingMin(types.Lows(frame.Bars), k.n)
	highN := RollingMax(types.Highs(frame.Bars), k.n)

	rsv := make([]float64, len(closes))
	for i := range closes {
		rng := highN[i] - lowN[i]
		if rng == 0 || math.IsNaN(rng) {
			rsv[i] = math.NaN()

			continue
		}

		rsv[i] = (closes[i] - lowN[i]) / rng * 100
	}

	kLine := EWM(rsv, 1/float64(k.m1))
	dLine := EWM(kLine, 1/float64(k.m2))

	jLine := make([]float64, len(kLine))
	for i := range kLine {
		jLine[i] = 3*kLine[i] - 2*dLine[i]
	}

	if err := frame.SetColumn(ColumnK, kLine); err != nil {
		return err
	}

	if err := frame.SetColumn(ColumnD, dLine); err != nil {
		return err
	}

	return frame.SetColumn(ColumnJ, jLine)
}
