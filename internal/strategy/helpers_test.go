package strategy

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// barsFromCloses builds daily bars with a one point high/low band.
func barsFromCloses(closes ...float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.Bar, len(closes))

	for i, c := range closes {
		out[i] = types.Bar{
			Symbol: "600000",
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}

	return out
}

// valleyThenPeak falls for 10 bars, rises for 10 and falls for 10.
func valleyThenPeak() []float64 {
	closes := make([]float64, 0, 30)
	for i := 0; i < 10; i++ {
		closes = append(closes, float64(20-i))
	}

	for i := 10; i < 20; i++ {
		closes = append(closes, float64(11+i-9))
	}

	for i := 20; i < 30; i++ {
		closes = append(closes, float64(21-(i-19)))
	}

	return closes
}

func signalIndexes(frame *types.Frame, want types.Signal) []int {
	var out []int

	for i, s := range frame.Signals {
		if s == want {
			out = append(out, i)
		}
	}

	return out
}
