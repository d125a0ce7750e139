package engine

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when the backtest begins, once the strategy is known.
type OnBacktestStartCallback func(strategyID string) error

// OnBacktestEndCallback is called when the backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnRunStartCallback is called once the bars are loaded and the signals are computed.
// runID is the id the result will carry.
type OnRunStartCallback func(runID string, strategyID string, totalDataPoints int) error

// OnRunEndCallback is called after a run succeeded. resultFolderPath is empty
// when no results folder is set.
type OnRunEndCallback func(runID string, resultFolderPath string)

// OnProcessDataCallback is called for each bar processed.
type OnProcessDataCallback func(current int, total int) error

// OnTradeCallback is called for each executed trade.
type OnTradeCallback func(trade types.Trade) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
	OnTrade         *OnTradeCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataPath sets the CSV or Parquet file the data source loads before each run.
	// Leave it empty for data sources that already hold their bars.
	SetDataPath(path string) error
	// SetDataSource sets the data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// SetResultsFolder sets the output directory for exported results.
	// Nothing is exported when it is empty.
	SetResultsFolder(folder string) error
	// SetStrategyRegistry replaces the registry strategies are built from.
	// The built-in registry is used when none is set.
	SetStrategyRegistry(registry strategy.Registry) error
	// LoadStrategy sets the strategy to run, bypassing the configured strategy id.
	LoadStrategy(strategy strategy.Strategy) error
	// Run runs the engine and executes the trading strategy.
	// The context is checked between bars; a cancelled run returns the
	// context error and no result.
	Run(ctx context.Context, callbacks LifecycleCallbacks) (*types.BacktestResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
