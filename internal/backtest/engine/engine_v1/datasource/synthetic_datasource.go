package datasource

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// SyntheticConfig configures GenerateBars.
type SyntheticConfig struct {
	// Symbol is stamped on every bar
	Symbol string
	// Start and End bound the business days to generate (inclusive)
	Start time.Time
	End   time.Time
	// BasePrice is the first open
	BasePrice float64
	// Volatility is the standard deviation of the daily return (0.02 = 2%)
	Volatility float64
	// Seed makes the series reproducible
	Seed int64
	// VolumeMin and VolumeMax bound the uniform daily volume
	VolumeMin float64
	VolumeMax float64
}

// DefaultSyntheticConfig returns the series used when no data file is given.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Symbol:     "SYNTHETIC",
		Start:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		BasePrice:  10.0,
		Volatility: 0.02,
		Seed:       42,
		VolumeMin:  1_000_000,
		VolumeMax:  5_000_000,
	}
}

// GenerateBars produces one bar per business day following a geometric
// random walk. Each open is the previous close.
func GenerateBars(config SyntheticConfig) []types.Bar {
	rng := rand.New(rand.NewSource(config.Seed))

	var bars []types.Bar

	price := config.BasePrice
	first := true

	for day := config.Start; !day.After(config.End); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		open := price
		close := price

		if !first {
			// Box-Muller
			u1 := 1 - rng.Float64()
			u2 := rng.Float64()
			z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

			close = open * (1 + config.Volatility*z)
			if close <= 0 {
				close = open * 0.99
			}
		}

		first = false

		high := math.Max(open, close) * (1 + rng.Float64()*0.03)
		low := math.Min(open, close) * (1 - rng.Float64()*0.03)
		volume := math.Floor(config.VolumeMin + rng.Float64()*(config.VolumeMax-config.VolumeMin))

		bars = append(bars, types.Bar{
			Symbol: config.Symbol,
			Time:   day,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: volume,
		})

		price = close
	}

	return bars
}

// NewSyntheticDataSource serves GenerateBars(config) from memory.
func NewSyntheticDataSource(config SyntheticConfig) DataSource {
	return NewInMemoryDataSource(GenerateBars(config))
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
