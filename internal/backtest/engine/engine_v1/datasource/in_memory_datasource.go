package datasource

import (
	"slices"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// InMemoryDataSource serves a preloaded slice of bars sorted by time.
type InMemoryDataSource struct {
	bars []types.Bar
	mu   sync.RWMutex
}

// NewInMemoryDataSource copies bars and sorts the copy by time.
func NewInMemoryDataSource(bars []types.Bar) *InMemoryDataSource {
	sorted := slices.Clone(bars)
	slices.SortStableFunc(sorted, func(a, b types.Bar) int {
		return a.Time.Compare(b.Time)
	})

	return &InMemoryDataSource{
		bars: sorted,
		mu:   sync.RWMutex{},
	}
}

// Initialize is a no-op; the bars were given at construction.
func (ds *InMemoryDataSource) Initialize(_ string) error {
	return nil
}

func (ds *InMemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		ds.mu.RLock()
		bars := ds.bars
		ds.mu.RUnlock()

		for _, bar := range bars {
			if !inRange(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

func (ds *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	count := 0

	for _, bar := range ds.bars {
		if inRange(bar.Time, start, end) {
			count++
		}
	}

	return count, nil
}

func (ds *InMemoryDataSource) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.bars = nil

	return nil
}
