package strategy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestParamsSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func (suite *ParamsTestSuite) TestSplitPrefixedParams() {
	per, rest := SplitPrefixedParams(
		[]string{KDJID, RSIID},
		Params{
			"basic_kdj_n":          5,
			"basic_kdj_m1":         2,
			"rsi_rsi_period":       10,
			"initial_capital":      1000,
			"basic_kdj_":           1,
			"volume_volume_factor": 2.0,
		},
	)

	suite.Equal(Params{"n": 5, "m1": 2}, per[KDJID])
	suite.Equal(Params{"rsi_period": 10}, per[RSIID])
	suite.Equal(Params{"initial_capital": 1000, "basic_kdj_": 1, "volume_volume_factor": 2.0}, rest)
}

func (suite *ParamsTestSuite) TestSplitPrefixedParamsLongestPrefixWins() {
	per, _ := SplitPrefixedParams([]string{"a", "a_b"}, Params{"a_b_x": 1, "a_y": 2})
	suite.Equal(Params{"x": 1}, per["a_b"])
	suite.Equal(Params{"y": 2}, per["a"])
}

func (suite *ParamsTestSuite) TestResolveNested() {
	resolved, err := CombinedDescriptor.Resolve(Params{
		"selected_strategies": []any{"basic_kdj", "rsi"},
		"strategy_params": map[string]any{
			"basic_kdj": map[string]any{"n": 5},
		},
	})
	suite.Require().NoError(err)

	suite.Equal([]string{"basic_kdj", "rsi"}, resolved.Strings("selected_strategies"))
	suite.Equal(Params{"n": 5}, resolved.Nested("strategy_params")["basic_kdj"])
}

func (suite *ParamsTestSuite) TestResolveDefaultSelection() {
	resolved, err := CombinedDescriptor.Resolve(nil)
	suite.Require().NoError(err)
	suite.Equal([]string{KDJID}, resolved.Strings("selected_strategies"))
	suite.Nil(resolved.Nested("strategy_params"))
}

func (suite *ParamsTestSuite) TestResolveCommaSeparatedList() {
	resolved, err := CombinedDescriptor.Resolve(Params{"selected_strategies": "basic_kdj, macd"})
	suite.Require().NoError(err)
	suite.Equal([]string{"basic_kdj", "macd"}, resolved.Strings("selected_strategies"))
}

func (suite *ParamsTestSuite) TestParamsString() {
	p := Params{"m2": 3, "n": 9, "m1": 3, "extra": true}
	suite.Equal("n=9, m1=3, m2=3, extra=true", p.String(KDJDescriptor.Params...))
	suite.Equal("extra=true, m1=3, m2=3, n=9", p.String())
}

func (suite *ParamsTestSuite) TestJSONSchema() {
	schema := RSIDescriptor.JSONSchema()
	suite.Equal("object", schema.Type)

	period, ok := schema.Properties.Get("rsi_period")
	suite.Require().True(ok)
	suite.Equal("integer", period.Type)
	suite.Equal(json.Number("6"), period.Minimum)
	suite.Equal(json.Number("24"), period.Maximum)
	suite.Equal(14, period.Default)

	data, err := json.Marshal(schema)
	suite.NoError(err)
	suite.Contains(string(data), `"oversold_threshold"`)
}

func (suite *ParamsTestSuite) TestParseAssignments() {
	params, err := ParseAssignments([]string{"n=9", "volume_factor=1.5", " selected_strategies = [basic_kdj, rsi]", "empty="})

	suite.Require().NoError(err)
	suite.Equal(9, params["n"])
	suite.Equal(1.5, params["volume_factor"])
	suite.Equal([]any{"basic_kdj", "rsi"}, params["selected_strategies"])
	suite.Nil(params["empty"])
	suite.Contains(params, "empty")
	suite.Equal([]string{"basic_kdj", "rsi"}, params.Strings("selected_strategies"))
}

func (suite *ParamsTestSuite) TestParseAssignmentsRejectsMalformedPairs() {
	for _, pair := range []string{"n", "=5", "n=[1, 2"} {
		suite.Run(pair, func() {
			_, err := ParseAssignments([]string{pair})
			suite.Error(err)
		})
	}
}
