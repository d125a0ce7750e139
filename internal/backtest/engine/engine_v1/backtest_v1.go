package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/writer"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/marker"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// forcedExitSource attributes exits taken by an execution policy.
const forcedExitSource = "execution_policy"

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	initialized   bool
	dataPath      string
	resultsFolder string
	log           *logger.Logger
	ownLogger     bool
	registry      strategy.Registry
	strategy      strategy.Strategy
	marker        marker.Marker
	datasource    datasource.DataSource
}

// NewBacktestEngineV1 creates an engine that builds its own production
// logger on Initialize.
func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:        EmptyConfig(),
		initialized:   false,
		dataPath:      "",
		resultsFolder: "",
		log:           logger.NewNopLogger(),
		ownLogger:     true,
		registry:      nil,
		strategy:      nil,
		marker:        NewBacktestMarker(),
		datasource:    nil,
	}
}

// NewBacktestEngineV1WithLogger creates an engine logging to log.
func NewBacktestEngineV1WithLogger(log *logger.Logger) engine.Engine {
	b := NewBacktestEngineV1().(*BacktestEngineV1)
	b.log = log
	b.ownLogger = false

	return b
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	b.config = EmptyConfig()
	b.initialized = false

	// parse the config
	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse backtest config", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	if err := version.CheckCompatibility(version.GetVersion(), b.config.EngineVersion); err != nil {
		return err
	}

	if b.ownLogger {
		log, err := logger.NewLogger()
		if err != nil {
			return err
		}

		b.log = log
	}

	if b.registry == nil {
		registry, err := strategy.NewDefaultRegistry()
		if err != nil {
			return err
		}

		b.registry = registry
	}

	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", b.config.InitialCapital),
		zap.String("broker", string(b.config.Broker)),
		zap.String("strategy", b.config.StrategyID()),
	)

	return nil
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	b.dataPath = path
	b.log.Debug("Data path set",
		zap.String("path", path),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.DataSource) error {
	b.datasource = dataSource

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.log.Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// SetStrategyRegistry implements engine.Engine.
func (b *BacktestEngineV1) SetStrategyRegistry(registry strategy.Registry) error {
	if registry == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy registry must not be nil")
	}

	b.registry = registry

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(s strategy.Strategy) error {
	if s == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "strategy must not be nil")
	}

	b.strategy = s
	b.log.Debug("Strategy loaded",
		zap.String("strategy", s.ID()),
	)

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (result *types.BacktestResult, err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	if b.dataPath != "" {
		if err := b.datasource.Initialize(b.dataPath); err != nil {
			return nil, err
		}
	}

	bars, err := datasource.ReadBars(b.datasource, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return nil, err
	}

	strat, err := b.resolveStrategy()
	if err != nil {
		return nil, err
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(strat.ID()); err != nil {
			return nil, err
		}
	}

	frame, err := strategy.Prepare(strat, bars)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, strat.ID(), len(bars)); err != nil {
			return nil, err
		}
	}

	b.log.Debug("Running strategy",
		zap.String("run_id", runID),
		zap.String("strategy", strat.ID()),
		zap.Int("bars", len(bars)),
	)

	state := NewBacktestState(b.log)
	state.Initialize(b.config.InitialCapital)
	trading := NewBacktestTrading(state, commission_fee.GetCommissionFeeHandler(b.config.Broker), b.config.PositionRatio)
	policy := strategy.PolicyOf(strat)

	if m, ok := b.marker.(*BacktestMarker); ok {
		m.Cleanup()
	}

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)
		}

		state.RecordEquity(bar.Close)
		state.Tick()

		if err := b.processBar(i, bar, frame, state, trading, policy, callbacks); err != nil {
			return nil, err
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, len(bars)); err != nil {
				return nil, err
			}
		}
	}

	result, err = b.buildResult(runID, strat, frame, state)
	if err != nil {
		return nil, err
	}

	resultFolder, err := b.writeResults(result)
	if err != nil {
		return nil, err
	}

	b.log.Debug("Backtest finished",
		zap.String("run_id", runID),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_equity", result.FinalEquity),
	)

	if callbacks.OnRunEnd != nil {
		(*callbacks.OnRunEnd)(runID, resultFolder)
	}

	return result, nil
}

// processBar acts on bar i. An exit forced by the policy takes precedence
// over the bar's own signal.
func (b *BacktestEngineV1) processBar(
	i int,
	bar types.Bar,
	frame *types.Frame,
	state *BacktestState,
	trading *BacktestTrading,
	policy types.ExecutionPolicy,
	callbacks engine.LifecycleCallbacks,
) error {
	holding := !state.Position().IsFlat()

	if holding {
		if exit, reason := policy.ShouldExit(bar, state.Holding()); exit {
			if trade := trading.Sell(bar, reason, []string{forcedExitSource}); trade.IsSome() {
				return b.emit(bar, trade.Unwrap(), true, callbacks)
			}

			return nil
		}
	}

	signal := frame.SignalAt(i)

	switch signal.Signal {
	case types.SignalBuy:
		if holding && !policy.AllowPyramiding() {
			return nil
		}

		if trade := trading.Buy(bar, frame.ReasonAt(i), signal.Sources); trade.IsSome() {
			return b.emit(bar, trade.Unwrap(), false, callbacks)
		}
	case types.SignalSell:
		reason := frame.ReasonAt(i)
		if reason == "" {
			reason = "signal"
		}

		if trade := trading.Sell(bar, reason, signal.Sources); trade.IsSome() {
			return b.emit(bar, trade.Unwrap(), false, callbacks)
		}
	case types.SignalHold:
	}

	return nil
}

func (b *BacktestEngineV1) emit(bar types.Bar, trade types.Trade, forced bool, callbacks engine.LifecycleCallbacks) error {
	if err := b.marker.Mark(bar, trade, forced); err != nil {
		return fmt.Errorf("failed to mark trade: %w", err)
	}

	if callbacks.OnTrade != nil {
		if err := (*callbacks.OnTrade)(trade); err != nil {
			return err
		}
	}

	return nil
}

func (b *BacktestEngineV1) buildResult(runID string, strat strategy.Strategy, frame *types.Frame, state *BacktestState) (*types.BacktestResult, error) {
	marks, err := b.marker.GetMarks()
	if err != nil {
		return nil, fmt.Errorf("failed to get marks: %w", err)
	}

	initial := b.config.InitialCapital
	equity := state.EquityCurve()

	final := initial
	if len(equity) > 0 {
		final = equity[len(equity)-1]
	}

	symbol := b.config.Symbol
	if symbol == "" && len(frame.Bars) > 0 {
		symbol = frame.Bars[0].Symbol
	}

	name := strat.ID()
	if desc, err := b.registry.Metadata(strat.ID()); err == nil && desc.DisplayName != "" {
		name = desc.DisplayName
	}

	trades := state.GetAllTrades()

	return &types.BacktestResult{
		ID:        runID,
		Timestamp: time.Now(),
		Symbol:    symbol,
		Strategy: types.StrategyInfo{
			ID:     strat.ID(),
			Name:   name,
			Params: map[string]any(strat.Params()),
		},
		InitialEquity: initial,
		FinalEquity:   final,
		ReturnRate:    (final - initial) / initial,
		Trades:        trades,
		EquityCurve:   equity,
		Metrics:       types.CalculateMetrics(trades, equity, frame.Bars),
		Marks:         marks,
		Frame:         frame,
	}, nil
}

// writeResults exports result when a results folder is set and returns the
// folder written to.
func (b *BacktestEngineV1) writeResults(result *types.BacktestResult) (string, error) {
	if b.resultsFolder == "" {
		return "", nil
	}

	w, err := writer.NewParquetWriter(b.resultsFolder, b.log)
	if err != nil {
		return "", err
	}
	defer w.Close()

	if _, err := w.Write(result, b.dataPath); err != nil {
		return "", err
	}

	return writer.ResultFolder(b.resultsFolder, result, b.dataPath), nil
}

func (b *BacktestEngineV1) resolveStrategy() (strategy.Strategy, error) {
	if b.strategy != nil {
		return b.strategy, nil
	}

	return b.registry.Create(b.config.StrategyID(), b.config.StrategyParams())
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		b.log.Error("Engine is not initialized")

		return errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.Wrap(errors.ErrCodeBacktestNoDatasource, "no datasource set", errors.ErrDataNotLoaded)
	}

	if b.strategy == nil && b.config.StrategyID() == "" {
		b.log.Error("No strategy configured")

		return errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy loaded or configured")
	}

	return nil
}
