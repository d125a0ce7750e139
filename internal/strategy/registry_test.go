package strategy

import (
	"sync"
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	r, err := NewDefaultRegistry()
	suite.Require().NoError(err)
	suite.registry = r
}

func (suite *RegistryTestSuite) TearDownTest() {
	suite.NoError(suite.registry.Close())
}

func (suite *RegistryTestSuite) TestCreateUnknown() {
	_, err := suite.registry.Create("unknown_id", nil)
	suite.Error(err)
	suite.True(errors.Is(err, errors.ErrUnregisteredStrategy))

	_, err = suite.registry.Metadata("unknown_id")
	suite.Equal(errors.ErrCodeUnregisteredStrategy, errors.GetCode(err))
}

func (suite *RegistryTestSuite) TestCreateAppliesDefaultsAndDropsUnknownKeys() {
	s, err := suite.registry.Create(KDJID, Params{"n": 5, "bogus": "ignored"})
	suite.Require().NoError(err)

	suite.Equal(KDJID, s.ID())
	suite.Equal(Params{"n": 5, "m1": 3, "m2": 3}, s.Params())
}

func (suite *RegistryTestSuite) TestCreateCoercesNumbers() {
	s, err := suite.registry.Create(RSIID, Params{"rsi_period": 10.0, "oversold_threshold": int64(20)})
	suite.Require().NoError(err)
	suite.Equal(10, s.Params()["rsi_period"])
	suite.Equal(20, s.Params()["oversold_threshold"])

	v, err := suite.registry.Create(VolumeID, Params{"volume_factor": 2})
	suite.Require().NoError(err)
	suite.Equal(2.0, v.Params()["volume_factor"])
}

func (suite *RegistryTestSuite) TestCreateRejectsOutOfBounds() {
	testCases := []struct {
		name   string
		id     string
		params Params
	}{
		{name: "kdj n too large", id: KDJID, params: Params{"n": 31}},
		{name: "kdj m1 zero", id: KDJID, params: Params{"m1": 0}},
		{name: "kdj fractional n", id: KDJID, params: Params{"n": 9.5}},
		{name: "volume factor too small", id: VolumeID, params: Params{"volume_factor": 0.9}},
		{name: "rsi period too short", id: RSIID, params: Params{"rsi_period": 4}},
		{name: "stop loss pct too wide", id: StopLossID, params: Params{"stop_loss_pct": 0.2}},
		{name: "wrong type", id: KDJID, params: Params{"n": "nine"}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.registry.Create(tc.id, tc.params)
			suite.Error(err)
			suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
		})
	}
}

func (suite *RegistryTestSuite) TestRegisterLastWins() {
	desc := Descriptor{ID: "custom", DisplayName: "first"}
	suite.NoError(suite.registry.Register(desc, NewMACDStrategy))

	desc.DisplayName = "second"
	suite.NoError(suite.registry.Register(desc, NewMACDStrategy))

	meta, err := suite.registry.Metadata("custom")
	suite.NoError(err)
	suite.Equal("second", meta.DisplayName)
}

func (suite *RegistryTestSuite) TestRegisterValidation() {
	suite.Error(suite.registry.Register(Descriptor{ID: ""}, NewMACDStrategy))
	suite.Error(suite.registry.Register(Descriptor{ID: "x"}, nil))
}

func (suite *RegistryTestSuite) TestAllIsSortedAndRestartable() {
	collect := func() []string {
		var ids []string
		for id := range suite.registry.All() {
			ids = append(ids, id)
		}

		return ids
	}

	expected := []string{KDJID, CombinedID, MACDID, RSIID, StopLossID, SMA20ID, VolumeID}
	suite.Equal(expected, collect())
	suite.Equal(expected, collect())

	// stopping early
	count := 0
	for range suite.registry.All() {
		count++
		if count == 2 {
			break
		}
	}

	suite.Equal(2, count)
}

func (suite *RegistryTestSuite) TestListWithMetadata() {
	meta := suite.registry.ListWithMetadata()
	suite.Len(meta, 7)

	kdj := meta[KDJID]
	suite.Equal("Basic KDJ", kdj.DisplayName)
	suite.Equal(9, kdj.ParamsSchema["n"].Default)
	suite.Equal(30.0, kdj.ParamsSchema["n"].Max.Unwrap())

	suite.Empty(meta[SMA20ID].ParamsSchema)
	suite.Contains(meta[CombinedID].ParamsSchema, "selected_strategies")
}

func (suite *RegistryTestSuite) TestClose() {
	r := NewRegistry()
	suite.NoError(RegisterBuiltins(r))
	suite.NoError(r.Close())

	_, err := r.Create(KDJID, nil)
	suite.Equal(errors.ErrCodeRegistryClosed, errors.GetCode(err))
	suite.Error(r.Register(KDJDescriptor, NewKDJStrategy))
	suite.Empty(r.ListWithMetadata())
}

func (suite *RegistryTestSuite) TestConcurrentReaders() {
	bars := barsFromCloses(valleyThenPeak()...)

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			s, err := suite.registry.Create(KDJID, nil)
			if err != nil {
				errs <- err

				return
			}

			frame, err := Prepare(s, bars)
			if err != nil {
				errs <- err

				return
			}

			if got := signalIndexes(frame, types.SignalBuy); len(got) != 1 {
				errs <- errors.Newf(errors.ErrCodeUnknown, "expected one buy, got %v", got)
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		suite.NoError(err)
	}
}
