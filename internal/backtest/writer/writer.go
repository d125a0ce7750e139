// Package writer exports backtest results for the external chart renderer.
package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const (
	TradesFile = "trades.parquet"
	EquityFile = "equity.parquet"
	MarksFile  = "marks.parquet"
	DataFile   = "data.parquet"
	StatsFile  = "stats.yaml"
)

// insertBatchSize bounds the rows of a single INSERT statement.
const insertBatchSize = 500

// ResultWriter writes the outcome of one run.
type ResultWriter interface {
	// Write exports result under a folder derived from the run and returns
	// the stats that were written.
	Write(result *types.BacktestResult, dataPath string) (types.RunStats, error)
	// Close releases any resources.
	Close() error
}

// ParquetWriter stages results in an in-memory DuckDB and copies each table
// to a Parquet file.
type ParquetWriter struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	baseDir string
}

// NewParquetWriter creates a writer rooted at baseDir.
func NewParquetWriter(baseDir string, logger *logger.Logger) (*ParquetWriter, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to open duckdb", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to connect to duckdb", err)
	}

	return &ParquetWriter{
		db:      db,
		logger:  logger,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		baseDir: baseDir,
	}, nil
}

// Write implements ResultWriter.
func (w *ParquetWriter) Write(result *types.BacktestResult, dataPath string) (types.RunStats, error) {
	folder := ResultFolder(w.baseDir, result, dataPath)

	if err := os.MkdirAll(folder, 0755); err != nil {
		return types.RunStats{}, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create result folder", err)
	}

	stats := result.Stats()
	stats.TradesFilePath = filepath.Join(folder, TradesFile)
	stats.EquityFilePath = filepath.Join(folder, EquityFile)
	stats.MarksFilePath = filepath.Join(folder, MarksFile)
	stats.DataPath = dataPath

	steps := []struct {
		name  string
		write func(path string) error
		path  string
	}{
		{name: "trades", write: func(path string) error { return w.writeTrades(result.Trades, path) }, path: stats.TradesFilePath},
		{name: "equity", write: func(path string) error { return w.writeEquity(result, path) }, path: stats.EquityFilePath},
		{name: "marks", write: func(path string) error { return w.writeMarks(result.Marks, path) }, path: stats.MarksFilePath},
		{name: "data", write: func(path string) error { return w.writeFrame(result.Frame, path) }, path: filepath.Join(folder, DataFile)},
	}

	for _, step := range steps {
		if err := step.write(step.path); err != nil {
			return types.RunStats{}, errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to write %s", step.name)
		}
	}

	if err := types.WriteRunStats(filepath.Join(folder, StatsFile), stats); err != nil {
		return types.RunStats{}, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write stats", err)
	}

	w.logger.Info("Successfully exported backtest results",
		zap.String("folder", folder),
		zap.Int("trades", len(result.Trades)),
		zap.Int("marks", len(result.Marks)),
	)

	return stats, nil
}

// Close implements ResultWriter.
func (w *ParquetWriter) Close() error {
	return w.db.Close()
}

func (w *ParquetWriter) writeTrades(trades []types.Trade, path string) error {
	columns := []string{
		"id", "time", "side", "price", "quantity", "cost", "commission", "stamp_duty", "transfer_fee",
		"stock_value", "total_asset", "position_profit", "reason", "sources",
	}

	rows := make([][]any, len(trades))
	for i, t := range trades {
		rows[i] = []any{
			t.ID, t.Time, string(t.Side), t.Price, t.Quantity, t.Cost.Total, t.Cost.Commission, t.Cost.StampDuty, t.Cost.TransferFee,
			t.StockValue, t.TotalAsset, t.PositionProfit, t.ReasonOrEmpty(), strings.Join(t.Sources, ","),
		}
	}

	return w.export("trades", `
		id TEXT, time TIMESTAMP, side TEXT, price DOUBLE, quantity BIGINT, cost DOUBLE, commission DOUBLE,
		stamp_duty DOUBLE, transfer_fee DOUBLE, stock_value DOUBLE, total_asset DOUBLE, position_profit DOUBLE,
		reason TEXT, sources TEXT
	`, columns, rows, path)
}

func (w *ParquetWriter) writeEquity(result *types.BacktestResult, path string) error {
	var bars []types.Bar
	if result.Frame != nil {
		bars = result.Frame.Bars
	}

	rows := make([][]any, len(result.EquityCurve))
	for i, value := range result.EquityCurve {
		row := []any{i, nil, nil, value}
		if i < len(bars) {
			row[1] = bars[i].Time
			row[2] = bars[i].Close
		}

		rows[i] = row
	}

	return w.export("equity", `bar INTEGER, time TIMESTAMP, close DOUBLE, equity DOUBLE`,
		[]string{"bar", "time", "close", "equity"}, rows, path)
}

func (w *ParquetWriter) writeMarks(marks []types.Mark, path string) error {
	rows := make([][]any, len(marks))
	for i, m := range marks {
		rows[i] = []any{m.Time, m.Price, m.Signal.String(), string(m.Color), string(m.Shape), m.Title, m.Message}
	}

	return w.export("marks", `time TIMESTAMP, price DOUBLE, signal TEXT, color TEXT, shape TEXT, title TEXT, message TEXT`,
		[]string{"time", "price", "signal", "color", "shape", "title", "message"}, rows, path)
}

// writeFrame exports the bars with every computed indicator column and the
// resolved signal.
func (w *ParquetWriter) writeFrame(frame *types.Frame, path string) error {
	if frame == nil {
		frame = types.NewFrame(nil)
	}

	indicators := frame.Columns()

	columns := []string{"time", "symbol", "open", "high", "low", "close", "volume", "signal", "reason"}
	schema := []string{
		"time TIMESTAMP", "symbol TEXT", "open DOUBLE", "high DOUBLE", "low DOUBLE", "close DOUBLE",
		"volume DOUBLE", "signal INTEGER", "reason TEXT",
	}

	for _, name := range indicators {
		columns = append(columns, quoteIdent(name))
		schema = append(schema, quoteIdent(name)+" DOUBLE")
	}

	rows := make([][]any, frame.Len())
	for i, bar := range frame.Bars {
		row := []any{bar.Time, bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, int(frame.SignalAt(i).Signal), frame.ReasonAt(i)}

		for _, name := range indicators {
			col, _ := frame.Column(name)
			row = append(row, col[i])
		}

		rows[i] = row
	}

	return w.export("frame_data", strings.Join(schema, ", "), columns, rows, path)
}

// export recreates table, fills it with rows and copies it to path.
func (w *ParquetWriter) export(table string, schema string, columns []string, rows [][]any, path string) error {
	// Using raw SQL as Squirrel doesn't support DDL or COPY
	if _, err := w.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s; CREATE TABLE %s (%s);`, table, table, schema)); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))

		insert := w.sq.Insert(table).Columns(columns...)
		for _, row := range rows[start:end] {
			insert = insert.Values(row...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		if _, err := w.db.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if _, err := w.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, strings.ReplaceAll(path, "'", "''"))); err != nil {
		return fmt.Errorf("failed to export %s to Parquet: %w", table, err)
	}

	return nil
}

// ResultFolder returns baseDir/<strategy>/<symbol>/<start>_<end>/<data file>.
// Runs without a time window or data file skip those levels.
func ResultFolder(baseDir string, result *types.BacktestResult, dataPath string) string {
	folder := filepath.Join(baseDir, sanitize(result.Strategy.ID), sanitize(result.Symbol))

	bars := []types.Bar(nil)
	if result.Frame != nil {
		bars = result.Frame.Bars
	}

	if len(bars) > 0 {
		timeRange := fmt.Sprintf("%s_%s", bars[0].Time.Format("20060102"), bars[len(bars)-1].Time.Format("20060102"))
		folder = filepath.Join(folder, timeRange)
	}

	if dataPath != "" {
		dataFileName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))
		folder = filepath.Join(folder, sanitize(dataFileName))
	}

	return folder
}

func sanitize(name string) string {
	if name == "" {
		return "unknown"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		default:
			return r
		}
	}, name)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
