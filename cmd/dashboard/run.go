package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"gopkg.in/yaml.v2"
)

// Settings are the run options fixed on the command line.
type Settings struct {
	InitialCapital float64
	PositionRatio  float64
	Broker         commission_fee.Broker
	Symbol         string
	// DataPath is a CSV or Parquet file; synthetic bars are generated when empty.
	DataPath  string
	StartTime optional.Option[time.Time]
	EndTime   optional.Option[time.Time]
}

// DefaultSettings backtests 100000 of synthetic bars with A-share costs.
func DefaultSettings() Settings {
	return Settings{
		InitialCapital: 100000,
		PositionRatio:  1,
		Broker:         commission_fee.BrokerAShare,
		Symbol:         "",
		DataPath:       "",
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
	}
}

// runRequest is one backtest picked in the dashboard.
type runRequest struct {
	strategyID string
	strategies []string
	params     strategy.Params
}

func (s Settings) config(req runRequest) engine_v1.BacktestEngineV1Config {
	config := engine_v1.EmptyConfig()
	config.InitialCapital = s.InitialCapital
	config.PositionRatio = s.PositionRatio
	config.Broker = s.Broker
	config.Symbol = s.Symbol
	config.StartTime = s.StartTime
	config.EndTime = s.EndTime
	config.Strategy = req.strategyID
	config.Strategies = req.strategies
	config.Params = req.params

	return config
}

func (s Settings) dataSource(log *logger.Logger) (datasource.DataSource, error) {
	if s.DataPath != "" {
		ds, err := datasource.NewDataSource(":memory:", s.Symbol, log)
		if err != nil {
			return nil, err
		}

		return ds, nil
	}

	synthetic := datasource.DefaultSyntheticConfig()
	if s.Symbol != "" {
		synthetic.Symbol = s.Symbol
	}

	if s.StartTime.IsSome() {
		synthetic.Start = s.StartTime.Unwrap()
	}

	if s.EndTime.IsSome() {
		synthetic.End = s.EndTime.Unwrap()
	}

	return datasource.NewSyntheticDataSource(synthetic), nil
}

// startBacktest runs req in a goroutine. Progress and the final result are
// delivered on the returned channel, which is closed once the run ends.
func startBacktest(ctx context.Context, registry strategy.Registry, settings Settings, req runRequest) <-chan tea.Msg {
	events := make(chan tea.Msg, 16)

	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(events)

		result, err := runBacktest(ctx, registry, settings, req, send)
		if err != nil {
			send(BacktestErrorMsg{Err: err})

			return
		}

		send(BacktestDoneMsg{Result: result})
	}()

	return events
}

func runBacktest(ctx context.Context, registry strategy.Registry, settings Settings, req runRequest, send func(tea.Msg)) (*types.BacktestResult, error) {
	log := logger.NewNopLogger()

	configYAML, err := yaml.Marshal(settings.config(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	backtester := engine_v1.NewBacktestEngineV1WithLogger(log)
	if err := backtester.SetStrategyRegistry(registry); err != nil {
		return nil, err
	}

	if err := backtester.Initialize(string(configYAML)); err != nil {
		return nil, err
	}

	ds, err := settings.dataSource(log)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	if settings.DataPath != "" {
		if err := backtester.SetDataPath(settings.DataPath); err != nil {
			return nil, err
		}
	}

	if err := backtester.SetDataSource(ds); err != nil {
		return nil, err
	}

	lastPercent := -1
	onProcessData := engine.OnProcessDataCallback(func(current int, total int) error {
		// one message per percent keeps the update loop responsive
		percent := current * 100 / max(total, 1)
		if percent == lastPercent && current != total {
			return nil
		}

		lastPercent = percent
		send(ProgressMsg{Current: current, Total: total})

		return nil
	})

	return backtester.Run(ctx, engine.LifecycleCallbacks{
		OnBacktestStart: nil,
		OnBacktestEnd:   nil,
		OnRunStart:      nil,
		OnRunEnd:        nil,
		OnProcessData:   &onProcessData,
		OnTrade:         nil,
	})
}

// waitForEvent reads the next message of a running backtest.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}

		return msg
	}
}
