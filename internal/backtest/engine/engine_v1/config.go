package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

type BacktestEngineV1Config struct {
	InitialCapital float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting cash of the backtest,minimum=0" validate:"gt=0"`
	PositionRatio  float64                    `yaml:"position_ratio" json:"position_ratio" jsonschema:"title=Position Ratio,description=Share of cash committed by each buy,minimum=0,maximum=1,default=1" validate:"gt=0,lte=1"`
	Broker         commission_fee.Broker      `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations" validate:"oneof=a_share interactive_broker zero_commission"`
	Symbol         string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument code stamped on results"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	Strategy       string                     `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Registry id of the strategy to run"`
	Strategies     []string                   `yaml:"strategies" json:"strategies" jsonschema:"title=Strategies,description=Ids combined by combined_strategy"`
	Params         map[string]any             `yaml:"params" json:"params" jsonschema:"title=Params,description=Strategy parameters; prefixed by strategy id when combining"`
	EngineVersion  string                     `yaml:"engine_version" json:"engine_version" jsonschema:"title=Engine Version,description=Engine version or semver constraint the config was written for"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	defaults := EmptyConfig()

	type Config struct {
		InitialCapital float64               `yaml:"initial_capital"`
		PositionRatio  *float64              `yaml:"position_ratio"`
		Broker         commission_fee.Broker `yaml:"broker"`
		Symbol         string                `yaml:"symbol"`
		StartTime      *time.Time            `yaml:"start_time"`
		EndTime        *time.Time            `yaml:"end_time"`
		Strategy       string                `yaml:"strategy"`
		Strategies     []string              `yaml:"strategies"`
		Params         map[string]any        `yaml:"params"`
		EngineVersion  string                `yaml:"engine_version"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCapital = config.InitialCapital
	c.PositionRatio = defaults.PositionRatio

	if config.PositionRatio != nil {
		c.PositionRatio = *config.PositionRatio
	}

	c.Broker = config.Broker
	if c.Broker == "" {
		c.Broker = defaults.Broker
	}

	c.Symbol = config.Symbol
	c.StartTime = optional.None[time.Time]()
	c.EndTime = optional.None[time.Time]()

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	c.Strategy = config.Strategy
	c.Strategies = config.Strategies
	c.Params = normalizeParams(config.Params)
	c.EngineVersion = config.EngineVersion

	return nil
}

// MarshalYAML writes the config in the layout UnmarshalYAML reads.
// Unset dates are omitted.
func (c BacktestEngineV1Config) MarshalYAML() (interface{}, error) {
	type Config struct {
		InitialCapital float64               `yaml:"initial_capital"`
		PositionRatio  float64               `yaml:"position_ratio"`
		Broker         commission_fee.Broker `yaml:"broker"`
		Symbol         string                `yaml:"symbol,omitempty"`
		StartTime      *time.Time            `yaml:"start_time,omitempty"`
		EndTime        *time.Time            `yaml:"end_time,omitempty"`
		Strategy       string                `yaml:"strategy,omitempty"`
		Strategies     []string              `yaml:"strategies,omitempty"`
		Params         map[string]any        `yaml:"params,omitempty"`
		EngineVersion  string                `yaml:"engine_version,omitempty"`
	}

	config := Config{
		InitialCapital: c.InitialCapital,
		PositionRatio:  c.PositionRatio,
		Broker:         c.Broker,
		Symbol:         c.Symbol,
		StartTime:      nil,
		EndTime:        nil,
		Strategy:       c.Strategy,
		Strategies:     c.Strategies,
		Params:         c.Params,
		EngineVersion:  c.EngineVersion,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		config.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		config.EndTime = &end
	}

	return config, nil
}

// Validate checks field constraints and the time window.
func (c *BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time must not be before start_time")
	}

	return nil
}

// StrategyID returns the strategy to build, defaulting to the combined
// strategy when only a strategy list is given.
func (c *BacktestEngineV1Config) StrategyID() string {
	if c.Strategy == "" && len(c.Strategies) > 0 {
		return strategy.CombinedID
	}

	return c.Strategy
}

// StrategyParams maps the config's params to the parameters of StrategyID.
// For the combined strategy, params is either a nested strategy_params
// mapping or flat {id}_{param} keys.
func (c *BacktestEngineV1Config) StrategyParams() strategy.Params {
	params := strategy.Params(c.Params).Clone()
	if c.StrategyID() != strategy.CombinedID {
		return params
	}

	if params == nil {
		params = strategy.Params{}
	}

	if len(c.Strategies) > 0 {
		params["selected_strategies"] = c.Strategies
	}

	if _, ok := params["strategy_params"]; !ok {
		perStrategy, _ := strategy.SplitPrefixedParams(params.Strings("selected_strategies"), params)
		params["strategy_params"] = perStrategy
	}

	return params
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func TestConfig(startTime time.Time, endTime time.Time, broker commission_fee.Broker) BacktestEngineV1Config {
	config := EmptyConfig()
	config.InitialCapital = 100000
	config.Broker = broker
	config.Symbol = "600000"
	config.StartTime = optional.Some(startTime)
	config.EndTime = optional.Some(endTime)

	return config
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital: 0,
		PositionRatio:  1,
		Broker:         commission_fee.BrokerAShare,
		Symbol:         "",
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
		Strategy:       "",
		Strategies:     nil,
		Params:         nil,
		EngineVersion:  "",
	}
}

// normalizeParams turns the map[interface{}]interface{} values yaml.v2 produces
// for nested mappings into map[string]any.
func normalizeParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}

	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = normalizeValue(v)
	}

	return out
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]any, len(value))
		for k, nested := range value {
			if key, ok := k.(string); ok {
				out[key] = normalizeValue(nested)
			}
		}

		return out
	case map[string]any:
		return normalizeParams(value)
	case []interface{}:
		out := make([]any, len(value))
		for i, nested := range value {
			out[i] = normalizeValue(nested)
		}

		return out
	default:
		return v
	}
}
