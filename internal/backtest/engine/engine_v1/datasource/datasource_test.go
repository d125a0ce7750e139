package datasource

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type InMemoryDataSourceTestSuite struct {
	suite.Suite
	start time.Time
}

func TestInMemoryDataSourceSuite(t *testing.T) {
	suite.Run(t, new(InMemoryDataSourceTestSuite))
}

func (suite *InMemoryDataSourceTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *InMemoryDataSourceTestSuite) bar(day int, close float64) types.Bar {
	return types.Bar{Symbol: "600000", Time: suite.start.AddDate(0, 0, day), Open: close, High: close, Low: close, Close: close, Volume: 100}
}

func (suite *InMemoryDataSourceTestSuite) TestSortsAndFilters() {
	ds := NewInMemoryDataSource([]types.Bar{suite.bar(2, 12), suite.bar(0, 10), suite.bar(1, 11), suite.bar(3, 13)})
	suite.Require().NoError(ds.Initialize("ignored"))

	bars, err := ReadBars(ds, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal([]float64{10, 11, 12, 13}, types.Closes(bars))

	testCases := []struct {
		name   string
		start  optional.Option[time.Time]
		end    optional.Option[time.Time]
		closes []float64
	}{
		{name: "start only", start: optional.Some(suite.start.AddDate(0, 0, 2)), end: optional.None[time.Time](), closes: []float64{12, 13}},
		{name: "end only", start: optional.None[time.Time](), end: optional.Some(suite.start.AddDate(0, 0, 1)), closes: []float64{10, 11}},
		{name: "both inclusive", start: optional.Some(suite.start.AddDate(0, 0, 1)), end: optional.Some(suite.start.AddDate(0, 0, 2)), closes: []float64{11, 12}},
		{name: "empty window", start: optional.Some(suite.start.AddDate(0, 0, 10)), end: optional.None[time.Time](), closes: nil},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			bars, err := ReadBars(ds, tc.start, tc.end)
			suite.Require().NoError(err)

			if tc.closes == nil {
				suite.Empty(bars)
			} else {
				suite.Equal(tc.closes, types.Closes(bars))
			}

			count, err := ds.Count(tc.start, tc.end)
			suite.Require().NoError(err)
			suite.Equal(len(tc.closes), count)
		})
	}
}

func (suite *InMemoryDataSourceTestSuite) TestEarlyStop() {
	ds := NewInMemoryDataSource([]types.Bar{suite.bar(0, 10), suite.bar(1, 11), suite.bar(2, 12)})

	seen := 0
	for range ds.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		seen++

		break
	}

	suite.Equal(1, seen)
}

func (suite *InMemoryDataSourceTestSuite) TestDuplicateTimesRejected() {
	ds := NewInMemoryDataSource([]types.Bar{suite.bar(0, 10), suite.bar(0, 11)})

	_, err := ReadBars(ds, optional.None[time.Time](), optional.None[time.Time]())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnorderedData))
}

func (suite *InMemoryDataSourceTestSuite) TestInputNotMutated() {
	input := []types.Bar{suite.bar(1, 11), suite.bar(0, 10)}
	_ = NewInMemoryDataSource(input)

	suite.Equal(11.0, input[0].Close)
}

func (suite *InMemoryDataSourceTestSuite) TestClose() {
	ds := NewInMemoryDataSource([]types.Bar{suite.bar(0, 10)})
	suite.NoError(ds.Close())

	count, err := ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Zero(count)
}
