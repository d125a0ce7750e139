package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const barsCSV = `date,open,high,low,close,volume
2024-01-02,10.0,10.5,9.8,10.2,1000
2024-01-03,10.2,10.8,10.1,10.6,1200
2024-01-04,10.6,10.9,10.3,10.4,900
2024-01-05,10.4,10.7,10.0,10.1,1100
`

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	ds  *DuckDBDataSource
	dir string
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	ds, err := NewDataSource(":memory:", "600000", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.ds = ds
	suite.dir = suite.T().TempDir()
}

func (suite *DuckDBDataSourceTestSuite) TearDownTest() {
	suite.NoError(suite.ds.Close())
}

func (suite *DuckDBDataSourceTestSuite) writeCSV(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *DuckDBDataSourceTestSuite) TestReadCSV() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeCSV("bars.csv", barsCSV)))

	bars, err := ReadBars(suite.ds, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 4)

	suite.Equal(types.Bar{
		Symbol: "600000",
		Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:   10.0,
		High:   10.5,
		Low:    9.8,
		Close:  10.2,
		Volume: 1000,
	}, suite.withUTC(bars[0]))
	suite.Equal([]float64{10.2, 10.6, 10.4, 10.1}, types.Closes(bars))
}

func (suite *DuckDBDataSourceTestSuite) TestDateFilter() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeCSV("bars.csv", barsCSV)))

	start := optional.Some(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	end := optional.Some(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))

	bars, err := ReadBars(suite.ds, start, end)
	suite.Require().NoError(err)
	suite.Equal([]float64{10.6, 10.4}, types.Closes(bars))

	count, err := suite.ds.Count(start, optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(3, count)
}

func (suite *DuckDBDataSourceTestSuite) TestSymbolColumnAndOrdering() {
	content := `time,symbol,open,high,low,close,volume
2024-01-03 00:00:00,SZ000001,2,2,2,2,10
2024-01-02 00:00:00,SZ000001,1,1,1,1,10
`
	suite.Require().NoError(suite.ds.Initialize(suite.writeCSV("unordered.csv", content)))

	bars, err := ReadBars(suite.ds, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal([]float64{1, 2}, types.Closes(bars))
	suite.Equal("SZ000001", bars[0].Symbol)
}

func (suite *DuckDBDataSourceTestSuite) TestReadParquet() {
	csvPath := suite.writeCSV("bars.csv", barsCSV)
	parquetPath := filepath.Join(suite.dir, "bars.parquet")

	_, err := suite.ds.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM read_csv_auto('%s', header=true)) TO '%s' (FORMAT PARQUET)`, csvPath, parquetPath))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.ds.Initialize(parquetPath))

	count, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(4, count)
}

func (suite *DuckDBDataSourceTestSuite) TestErrors() {
	testCases := []struct {
		name    string
		file    string
		content string
		code    errors.ErrorCode
	}{
		{name: "unsupported extension", file: "bars.txt", content: barsCSV, code: errors.ErrCodeDataSourceUnavailable},
		{name: "missing volume", file: "novol.csv", content: "date,open,high,low,close\n2024-01-02,1,1,1,1\n", code: errors.ErrCodeDataSourceUnavailable},
		{name: "missing date", file: "nodate.csv", content: "open,high,low,close,volume\n1,1,1,1,1\n", code: errors.ErrCodeDataSourceUnavailable},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			err := suite.ds.Initialize(suite.writeCSV(tc.file, tc.content))
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *DuckDBDataSourceTestSuite) TestNotInitialized() {
	_, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.ErrorIs(err, errors.ErrDataNotLoaded)

	_, err = ReadBars(suite.ds, optional.None[time.Time](), optional.None[time.Time]())
	suite.ErrorIs(err, errors.ErrDataNotLoaded)
}

func (suite *DuckDBDataSourceTestSuite) withUTC(bar types.Bar) types.Bar {
	bar.Time = bar.Time.UTC()

	return bar
}
