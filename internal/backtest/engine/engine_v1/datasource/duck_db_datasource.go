package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const (
	rawView  = "raw_bars"
	barsView = "market_data"
)

var barColumns = []string{"time", "symbol", "open", "high", "low", "close", "volume"}

// DuckDBDataSource reads bars from a CSV or Parquet file through DuckDB.
//
// The file needs open, high, low, close and volume columns plus a time or
// date column. A missing symbol column reads as the configured symbol.
type DuckDBDataSource struct {
	db          *sql.DB
	logger      *logger.Logger
	sq          squirrel.StatementBuilderType
	symbol      string
	initialized bool
}

// NewDataSource opens a DuckDB database at dbPath (":memory:" or "" for an
// in-memory database). Bars are loaded later by Initialize.
func NewDataSource(dbPath string, symbol string, logger *logger.Logger) (*DuckDBDataSource, error) {
	if dbPath == ":memory:" {
		dbPath = ""
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:          db,
		logger:      logger,
		sq:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		symbol:      symbol,
		initialized: false,
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	reader, err := readerFor(path)
	if err != nil {
		return err
	}

	// Squirrel doesn't support CREATE VIEW
	if _, err := d.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s; DROP VIEW IF EXISTS %s;`, barsView, rawView)); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing views", err)
	}

	if _, err := d.db.Exec(fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s;`, rawView, reader)); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read %s", path)
	}

	columns, err := d.columns(rawView)
	if err != nil {
		return err
	}

	timeColumn := ""

	for _, candidate := range []string{"time", "date"} {
		if slices.Contains(columns, candidate) {
			timeColumn = candidate

			break
		}
	}

	if timeColumn == "" {
		return errors.Newf(errors.ErrCodeDataSourceUnavailable, "%s has no time or date column", path)
	}

	for _, required := range []string{"open", "high", "low", "close", "volume"} {
		if !slices.Contains(columns, required) {
			return errors.Newf(errors.ErrCodeDataSourceUnavailable, "%s has no %s column", path, required)
		}
	}

	symbolExpr := quoteLiteral(d.symbol)
	if slices.Contains(columns, "symbol") {
		symbolExpr = "CAST(symbol AS VARCHAR)"
	}

	query := fmt.Sprintf(`
		CREATE VIEW %s AS
		SELECT
			CAST(%s AS TIMESTAMP) AS time,
			%s AS symbol,
			CAST(open AS DOUBLE) AS open,
			CAST(high AS DOUBLE) AS high,
			CAST(low AS DOUBLE) AS low,
			CAST(close AS DOUBLE) AS close,
			CAST(volume AS DOUBLE) AS volume
		FROM %s;
	`, barsView, timeColumn, symbolExpr, rawView)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create bar view", err)
	}

	d.initialized = true

	return nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		if !d.initialized {
			yield(types.Bar{}, errors.ErrDataNotLoaded)

			return
		}

		query, args, err := d.filter(d.sq.Select(barColumns...).From(barsView), start, end).
			OrderBy("time ASC").
			ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		d.logger.Debug("Reading bars from DuckDB", zap.String("query", query))

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var bar types.Bar

			if err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err))

				return
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err))
		}
	}
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	if !d.initialized {
		return 0, errors.ErrDataNotLoaded
	}

	query, args, err := d.filter(d.sq.Select("COUNT(*)").From(barsView), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	d.initialized = false

	return d.db.Close()
}

func (d *DuckDBDataSource) filter(q squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		q = q.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		q = q.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return q
}

func (d *DuckDBDataSource) columns(table string) ([]string, error) {
	query, args, err := d.sq.Select("column_name").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": table}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe bars", err)
	}
	defer rows.Close()

	var columns []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column", err)
		}

		columns = append(columns, strings.ToLower(name))
	}

	return columns, rows.Err()
}

// readerFor picks the DuckDB table function for the file extension.
func readerFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fmt.Sprintf("read_csv_auto(%s, header=true)", quoteLiteral(path)), nil
	case ".parquet":
		return fmt.Sprintf("read_parquet(%s)", quoteLiteral(path)), nil
	default:
		return "", errors.Newf(errors.ErrCodeDataSourceUnavailable, "unsupported bar file %q, want .csv or .parquet", path)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
