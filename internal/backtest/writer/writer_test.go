package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type WriterTestSuite struct {
	suite.Suite
	dir    string
	writer *ParquetWriter
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (suite *WriterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	writer, err := NewParquetWriter(suite.dir, logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.writer = writer
}

func (suite *WriterTestSuite) TearDownTest() {
	suite.Require().NoError(suite.writer.Close())
}

func (suite *WriterTestSuite) result() *types.BacktestResult {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	bars := make([]types.Bar, 3)
	for i := range bars {
		bars[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Symbol: "600000",
			Open:   10,
			High:   11,
			Low:    9,
			Close:  10 + float64(i),
			Volume: 1000,
		}
	}

	frame := types.NewFrame(bars)
	suite.Require().NoError(frame.SetColumn("K", []float64{0, 50, 80}))
	suite.Require().NoError(frame.SetColumn("signal_a", []float64{0, 1, -1}))
	frame.InitSignals()
	frame.SetSignal(0, types.SignalBuy, "KDJ buy", "basic_kdj")
	frame.SetSignal(2, types.SignalSell, "KDJ sell", "basic_kdj")

	trades := []types.Trade{
		{
			ID: "t1", Time: bars[0].Time, Side: types.SideBuy, Price: 10, Quantity: 100,
			Cost:       types.TradingCost{Total: 5.01, Commission: 5, StampDuty: 0, TransferFee: 0.01},
			StockValue: 1000, TotalAsset: 99994.99, PositionProfit: 0,
			Reason: optional.Some("KDJ buy"), Sources: []string{"basic_kdj"},
		},
		{
			ID: "t2", Time: bars[2].Time, Side: types.SideSell, Price: 12, Quantity: 100,
			Cost:       types.TradingCost{Total: 6.23, Commission: 5, StampDuty: 1.2, TransferFee: 0.03},
			StockValue: 0, TotalAsset: 100188.76, PositionProfit: 200,
			Reason: optional.None[string](), Sources: nil,
		},
	}

	return &types.BacktestResult{
		ID:            "run-1",
		Timestamp:     start,
		Symbol:        "600000",
		Strategy:      types.StrategyInfo{ID: "basic_kdj", Name: "Basic KDJ", Params: map[string]any{"n": 9}},
		InitialEquity: 100000,
		FinalEquity:   100188.76,
		ReturnRate:    0.0018876,
		Trades:        trades,
		EquityCurve:   []float64{100000, 100094.99, 100194.99},
		Metrics:       types.CalculateMetrics(trades, []float64{100000, 100094.99, 100194.99}, bars),
		Frame:         frame,
	}
}

func (suite *WriterTestSuite) count(path string) int {
	var n int

	err := suite.writer.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM read_parquet('%s')", path)).Scan(&n)
	suite.Require().NoError(err)

	return n
}

func (suite *WriterTestSuite) TestWriteExportsEveryFile() {
	result := suite.result()
	result.Marks = []types.Mark{
		{Time: result.Trades[0].Time, Price: 9, Signal: types.SignalBuy, Color: types.MarkColorGreen, Shape: types.MarkShapeTriangleUp, Title: "B", Message: "KDJ buy"},
	}

	stats, err := suite.writer.Write(result, "/data/600000.csv")
	suite.Require().NoError(err)

	folder := filepath.Join(suite.dir, "basic_kdj", "600000", "20240102_20240104", "600000")
	suite.Equal(filepath.Join(folder, TradesFile), stats.TradesFilePath)
	suite.Equal(filepath.Join(folder, EquityFile), stats.EquityFilePath)
	suite.Equal(filepath.Join(folder, MarksFile), stats.MarksFilePath)
	suite.Equal("/data/600000.csv", stats.DataPath)

	suite.Equal(2, suite.count(stats.TradesFilePath))
	suite.Equal(3, suite.count(stats.EquityFilePath))
	suite.Equal(1, suite.count(stats.MarksFilePath))
	suite.Equal(3, suite.count(filepath.Join(folder, DataFile)))

	read, err := types.ReadRunStats(filepath.Join(folder, StatsFile))
	suite.Require().NoError(err)
	suite.Equal("run-1", read.ID)
	suite.Equal("basic_kdj", read.Strategy.ID)
	suite.InDelta(100188.76, read.FinalEquity, 1e-9)
	suite.Equal(2, read.Metrics.NumberOfTrades)
}

func (suite *WriterTestSuite) TestTradeColumns() {
	result := suite.result()

	stats, err := suite.writer.Write(result, "")
	suite.Require().NoError(err)

	var (
		side      string
		stampDuty float64
		reason    string
		sources   string
	)

	query := fmt.Sprintf("SELECT side, stamp_duty, reason, sources FROM read_parquet('%s') WHERE id = 't2'", stats.TradesFilePath)
	suite.Require().NoError(suite.writer.db.QueryRow(query).Scan(&side, &stampDuty, &reason, &sources))
	suite.Equal("sell", side)
	suite.InDelta(1.2, stampDuty, 1e-9)
	suite.Equal("", reason)
	suite.Equal("", sources)

	query = fmt.Sprintf("SELECT sources FROM read_parquet('%s') WHERE id = 't1'", stats.TradesFilePath)
	suite.Require().NoError(suite.writer.db.QueryRow(query).Scan(&sources))
	suite.Equal("basic_kdj", sources)
}

func (suite *WriterTestSuite) TestFrameCarriesIndicatorsAndSignals() {
	result := suite.result()

	_, err := suite.writer.Write(result, "")
	suite.Require().NoError(err)

	dataFile := filepath.Join(ResultFolder(suite.dir, result, ""), DataFile)

	var (
		k      float64
		signal int
		reason string
	)

	query := fmt.Sprintf(`SELECT "K", signal, reason FROM read_parquet('%s') ORDER BY time DESC LIMIT 1`, dataFile)
	suite.Require().NoError(suite.writer.db.QueryRow(query).Scan(&k, &signal, &reason))
	suite.InDelta(80, k, 1e-9)
	suite.Equal(int(types.SignalSell), signal)
	suite.Equal("KDJ sell", reason)
}

func (suite *WriterTestSuite) TestEmptyResult() {
	result := &types.BacktestResult{
		ID:       "empty",
		Symbol:   "600000",
		Strategy: types.StrategyInfo{ID: "basic_kdj"},
	}

	stats, err := suite.writer.Write(result, "")
	suite.Require().NoError(err)
	suite.Equal(0, suite.count(stats.TradesFilePath))
	suite.Equal(0, suite.count(stats.EquityFilePath))

	_, err = os.Stat(filepath.Join(suite.dir, "basic_kdj", "600000", StatsFile))
	suite.NoError(err)
}

func (suite *WriterTestSuite) TestResultFolder() {
	tests := []struct {
		name     string
		result   *types.BacktestResult
		dataPath string
		expected string
	}{
		{
			name:     "no bars no data file",
			result:   &types.BacktestResult{Symbol: "600000", Strategy: types.StrategyInfo{ID: "rsi"}},
			dataPath: "",
			expected: filepath.Join("out", "rsi", "600000"),
		},
		{
			name:     "missing ids",
			result:   &types.BacktestResult{},
			dataPath: "bars.parquet",
			expected: filepath.Join("out", "unknown", "unknown", "bars"),
		},
		{
			name:     "bars and data file",
			result:   suite.result(),
			dataPath: "/tmp/my data.csv",
			expected: filepath.Join("out", "basic_kdj", "600000", "20240102_20240104", "my_data"),
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, ResultFolder("out", tc.result, tc.dataPath))
		})
	}
}
