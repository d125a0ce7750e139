package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/summary"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

const defaultCapital = 100000

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(16)
)

// backtestAction loads the config, wires the data source and runs one backtest.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	level := zapcore.InfoLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	registry, err := strategy.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to create strategy registry: %w", err)
	}

	if cmd.Bool("list") {
		return printStrategies(registry)
	}

	if cmd.Bool("schema") {
		schema, err := engine_v1.NewBacktestEngineV1WithLogger(log).GetConfigSchema()
		if err != nil {
			return err
		}

		fmt.Println(schema)

		return nil
	}

	config, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	configYAML, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	backtester := engine_v1.NewBacktestEngineV1WithLogger(log)
	if err := backtester.SetStrategyRegistry(registry); err != nil {
		return err
	}

	if err := backtester.Initialize(string(configYAML)); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	ds, err := newDataSource(cmd, config, log)
	if err != nil {
		return err
	}
	defer ds.Close()

	if dataPath := cmd.String("data"); dataPath != "" {
		if err := backtester.SetDataPath(dataPath); err != nil {
			return err
		}
	}

	if err := backtester.SetDataSource(ds); err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := backtester.SetResultsFolder(output); err != nil {
			return err
		}
	}

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(runID string, strategyID string, totalDataPoints int) error {
		bar = progressbar.NewOptions(totalDataPoints,
			progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", strategyID)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)

		return nil
	})
	onProcessData := engine.OnProcessDataCallback(func(current int, total int) error {
		if bar == nil {
			return nil
		}

		return bar.Set(current)
	})
	onRunEnd := engine.OnRunEndCallback(func(runID string, resultFolderPath string) {
		if bar != nil {
			_ = bar.Finish()
		}

		if resultFolderPath != "" {
			log.Info("Results written", zap.String("run_id", runID), zap.String("path", resultFolderPath))
		}
	})

	result, err := backtester.Run(ctx, engine.LifecycleCallbacks{
		OnBacktestStart: nil,
		OnBacktestEnd:   nil,
		OnRunStart:      &onRunStart,
		OnRunEnd:        &onRunEnd,
		OnProcessData:   &onProcessData,
		OnTrade:         nil,
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Println()
	fmt.Println(renderMetrics(result))
	fmt.Println(renderTrades(result.Trades))

	return nil
}

// buildConfig starts from --config (when given) and applies the flags that were set.
func buildConfig(cmd *cli.Command) (engine_v1.BacktestEngineV1Config, error) {
	config := engine_v1.EmptyConfig()

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("failed to read config: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if cmd.IsSet("capital") || config.InitialCapital == 0 {
		config.InitialCapital = cmd.Float("capital")
	}

	if cmd.IsSet("ratio") {
		config.PositionRatio = cmd.Float("ratio")
	}

	if cmd.IsSet("broker") {
		config.Broker = commission_fee.Broker(cmd.String("broker"))
	}

	if cmd.IsSet("symbol") {
		config.Symbol = cmd.String("symbol")
	}

	if cmd.IsSet("start") {
		config.StartTime = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		config.EndTime = optional.Some(cmd.Timestamp("end"))
	}

	if cmd.IsSet("strategy") {
		config.Strategy = cmd.String("strategy")
	}

	if cmd.IsSet("strategies") {
		config.Strategies = cmd.StringSlice("strategies")
	}

	if config.StrategyID() == "" {
		return config, fmt.Errorf("no strategy selected, use --strategy or --strategies (see --list)")
	}

	params, err := strategy.ParseAssignments(cmd.StringSlice("param"))
	if err != nil {
		return config, err
	}

	if len(params) > 0 && config.Params == nil {
		config.Params = map[string]any{}
	}

	for k, v := range params {
		config.Params[k] = v
	}

	return config, nil
}

// newDataSource reads --data through DuckDB, or generates synthetic bars
// over the configured window when no file is given.
func newDataSource(cmd *cli.Command, config engine_v1.BacktestEngineV1Config, log *logger.Logger) (datasource.DataSource, error) {
	if cmd.String("data") != "" {
		ds, err := datasource.NewDataSource(":memory:", config.Symbol, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source: %w", err)
		}

		return ds, nil
	}

	synthetic := datasource.DefaultSyntheticConfig()
	if config.Symbol != "" {
		synthetic.Symbol = config.Symbol
	}

	if config.StartTime.IsSome() {
		synthetic.Start = config.StartTime.Unwrap()
	}

	if config.EndTime.IsSome() {
		synthetic.End = config.EndTime.Unwrap()
	}

	if cmd.IsSet("seed") {
		synthetic.Seed = int64(cmd.Int("seed"))
	}

	log.Debug("No data file given, using synthetic bars",
		zap.String("symbol", synthetic.Symbol),
		zap.Time("start", synthetic.Start),
		zap.Time("end", synthetic.End),
	)

	return datasource.NewSyntheticDataSource(synthetic), nil
}

func printStrategies(registry strategy.Registry) error {
	meta := registry.ListWithMetadata()

	ids := make([]string, 0, len(meta))
	for id := range meta {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		m := meta[id]
		fmt.Printf("%s\n", headerStyle.Render(fmt.Sprintf("%s (%s)", m.DisplayName, id)))
		fmt.Printf("  %s\n", m.Description)

		names := make([]string, 0, len(m.ParamsSchema))
		for name := range m.ParamsSchema {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			spec := m.ParamsSchema[name]
			fmt.Printf("  --param %s=%v  (%s) %s\n", name, spec.Default, spec.Type, spec.Description)
		}

		fmt.Println()
	}

	return nil
}

func renderMetrics(result *types.BacktestResult) string {
	lines := make([]string, 0, 12)
	for _, m := range summary.Metrics(result) {
		lines = append(lines, labelStyle.Render(m.Label)+m.Value)
	}

	return strings.Join(lines, "\n")
}

func renderTrades(trades []types.Trade) string {
	if len(trades) == 0 {
		return "No trades."
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(summary.TradeColumns...).
		Rows(summary.TradeRows(trades)...)

	return t.String()
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage: "Backtest a built-in or combined strategy on daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a backtest config YAML; flags override its fields",
			},
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Registry id of the strategy to run",
			},
			&cli.StringSliceFlag{
				Name:  "strategies",
				Usage: "Strategy ids to combine (runs combined_strategy)",
			},
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "Strategy parameter as `name=value`; prefix with the strategy id when combining",
			},
			&cli.FloatFlag{
				Name:  "capital",
				Usage: "Initial capital",
				Value: defaultCapital,
			},
			&cli.FloatFlag{
				Name:  "ratio",
				Usage: "Share of cash committed by each buy (0, 1]",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "broker",
				Usage: fmt.Sprintf("Commission model (%s)", strings.Join(brokerNames(), ", ")),
				Value: string(commission_fee.BrokerAShare),
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Instrument code stamped on results",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "CSV or Parquet file with daily bars; synthetic bars are used when empty",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Seed of the synthetic bars",
			},
			&cli.TimestampFlag{
				Name:  "start",
				Usage: "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts:  []string{"2006-01-02"},
					Timezone: time.UTC,
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "End date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts:  []string{"2006-01-02"},
					Timezone: time.UTC,
				},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Folder for trades, equity, marks and data parquet files plus stats.yaml",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List the registered strategies and their parameters",
			},
			&cli.BoolFlag{
				Name:  "schema",
				Usage: "Print the JSON schema of the config file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: backtestAction,
	}
}

func main() {
	cmd := newCommand()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func brokerNames() []string {
	names := make([]string, 0, len(commission_fee.AllBrokers))
	for _, b := range commission_fee.AllBrokers {
		names = append(names, fmt.Sprint(b))
	}

	return names
}
