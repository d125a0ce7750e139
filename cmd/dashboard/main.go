package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/urfave/cli/v3"
)

func dashboardAction(ctx context.Context, cmd *cli.Command) error {
	registry, err := strategy.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to create strategy registry: %w", err)
	}

	settings := DefaultSettings()
	settings.InitialCapital = cmd.Float("capital")
	settings.PositionRatio = cmd.Float("ratio")
	settings.Broker = commission_fee.Broker(cmd.String("broker"))
	settings.Symbol = cmd.String("symbol")
	settings.DataPath = cmd.String("data")

	if cmd.IsSet("start") {
		settings.StartTime = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		settings.EndTime = optional.Some(cmd.Timestamp("end"))
	}

	p := tea.NewProgram(NewModel(registry, settings), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}

func main() {
	defaults := DefaultSettings()

	cmd := &cli.Command{
		Name:  "dashboard",
		Usage: "Pick strategies, tune their parameters and inspect backtest results in the terminal",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "capital",
				Usage: "Initial capital",
				Value: defaults.InitialCapital,
			},
			&cli.FloatFlag{
				Name:  "ratio",
				Usage: "Share of cash committed by each buy (0, 1]",
				Value: defaults.PositionRatio,
			},
			&cli.StringFlag{
				Name:  "broker",
				Usage: "Commission model (a_share, interactive_broker, zero_commission)",
				Value: string(defaults.Broker),
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
		},
		Action: dashboardAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
