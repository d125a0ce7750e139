package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// DataSource supplies the bar series of one instrument.
type DataSource interface {
	// Initialize loads the bars found at path. Sources that are built from
	// memory ignore path.
	Initialize(path string) error
	// ReadAll yields bars in time order, optionally bounded by start and end (inclusive).
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars within the bounds.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any resources.
	Close() error
}

// ReadBars collects ReadAll into a slice and checks that times strictly increase.
func ReadBars(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		if n := len(bars); n > 0 && !bar.Time.After(bars[n-1].Time) {
			return nil, errors.Newf(errors.ErrCodeUnorderedData,
				"bar at %s does not follow %s", bar.Time.Format(time.RFC3339), bars[n-1].Time.Format(time.RFC3339))
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
