package strategy

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Params are strategy parameters keyed by name.
type Params map[string]any

type ParamType string

const (
	ParamTypeInt        ParamType = "int"
	ParamTypeFloat      ParamType = "float"
	ParamTypeStringList ParamType = "string_list"
	ParamTypeObject     ParamType = "object"
)

// ParamSpec declares one accepted parameter.
type ParamSpec struct {
	Name        string                   `json:"name"`
	Type        ParamType                `json:"type"`
	Default     any                      `json:"default"`
	Min         optional.Option[float64] `json:"min"`
	Max         optional.Option[float64] `json:"max"`
	Step        optional.Option[float64] `json:"step"`
	Description string                   `json:"description"`
}

// Descriptor is the registry metadata of a strategy.
type Descriptor struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`
}

// Spec returns the declared parameter with the given name.
func (d Descriptor) Spec(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}

	return ParamSpec{}, false
}

// Resolve drops undeclared keys, fills defaults and validates each value
// against its declared type and bounds.
func (d Descriptor) Resolve(params Params) (Params, error) {
	out := make(Params, len(d.Params))

	for _, spec := range d.Params {
		raw, ok := params[spec.Name]
		if !ok || raw == nil {
			if spec.Default != nil {
				out[spec.Name] = spec.Default
			}

			continue
		}

		v, err := spec.coerce(raw)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "strategy %s", d.ID)
		}

		out[spec.Name] = v
	}

	return out, nil
}

func (p ParamSpec) coerce(raw any) (any, error) {
	switch p.Type {
	case ParamTypeInt:
		f, ok := toFloat(raw)
		if !ok || f != math.Trunc(f) {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be an integer, got %v", p.Name, raw)
		}

		if err := p.checkBounds(f); err != nil {
			return nil, err
		}

		return int(f), nil
	case ParamTypeFloat:
		f, ok := toFloat(raw)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a number, got %v", p.Name, raw)
		}

		if err := p.checkBounds(f); err != nil {
			return nil, err
		}

		return f, nil
	case ParamTypeStringList:
		list, ok := toStringList(raw)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a list of strings", p.Name)
		}

		return list, nil
	case ParamTypeObject:
		obj, ok := toNestedParams(raw)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a mapping of parameter sets", p.Name)
		}

		return obj, nil
	default:
		return raw, nil
	}
}

func (p ParamSpec) checkBounds(v float64) error {
	if p.Min.IsSome() && v < p.Min.Unwrap() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s must be >= %v, got %v", p.Name, p.Min.Unwrap(), v)
	}

	if p.Max.IsSome() && v > p.Max.Unwrap() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s must be <= %v, got %v", p.Name, p.Max.Unwrap(), v)
	}

	return nil
}

// JSONSchema describes the parameters as a JSON schema object.
func (d Descriptor) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()

	for _, spec := range d.Params {
		s := &jsonschema.Schema{
			Description: spec.Description,
			Default:     spec.Default,
		}

		switch spec.Type {
		case ParamTypeInt:
			s.Type = "integer"
		case ParamTypeFloat:
			s.Type = "number"
		case ParamTypeStringList:
			s.Type = "array"
			s.Items = &jsonschema.Schema{Type: "string"}
		case ParamTypeObject:
			s.Type = "object"
		}

		if spec.Min.IsSome() {
			s.Minimum = json.Number(formatNumber(spec.Min.Unwrap()))
		}

		if spec.Max.IsSome() {
			s.Maximum = json.Number(formatNumber(spec.Max.Unwrap()))
		}

		if spec.Step.IsSome() {
			s.MultipleOf = json.Number(formatNumber(spec.Step.Unwrap()))
		}

		props.Set(spec.Name, s)
	}

	return &jsonschema.Schema{
		Title:       d.ID,
		Description: d.Description,
		Type:        "object",
		Properties:  props,
	}
}

// Int returns an int parameter, or 0.
func (p Params) Int(name string) int {
	f, _ := toFloat(p[name])

	return int(f)
}

// Float returns a numeric parameter, or 0.
func (p Params) Float(name string) float64 {
	f, _ := toFloat(p[name])

	return f
}

// Strings returns a string list parameter.
func (p Params) Strings(name string) []string {
	list, _ := toStringList(p[name])

	return list
}

// Nested returns a parameter holding per-strategy parameter sets.
func (p Params) Nested(name string) map[string]Params {
	obj, _ := toNestedParams(p[name])

	return obj
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// String formats p as "k=v, k=v" in the order of specs, then remaining keys sorted.
func (p Params) String(specs ...ParamSpec) string {
	seen := make(map[string]bool, len(specs))
	parts := make([]string, 0, len(p))

	for _, spec := range specs {
		if v, ok := p[spec.Name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", spec.Name, v))
			seen[spec.Name] = true
		}
	}

	rest := make([]string, 0, len(p))
	for k := range p {
		if !seen[k] {
			rest = append(rest, k)
		}
	}

	sort.Strings(rest)

	for _, k := range rest {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}

	return strings.Join(parts, ", ")
}

// ParseAssignments reads "name=value" pairs typed on a command line or in a
// form. Values are read as YAML scalars, so "9" is an int, "1.5" a float and
// "[a, b]" a list.
func ParseAssignments(pairs []string) (Params, error) {
	params := make(Params, len(pairs))

	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "expected name=value, got %q", pair)
		}

		value, err := ParseValue(raw)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid value for %s", name)
		}

		params[name] = value
	}

	return params, nil
}

// ParseValue reads a single parameter value as a YAML scalar or flow list.
func ParseValue(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}

	return value, nil
}

// SplitPrefixedParams moves keys of the form "{id}_{param}" into per-id
// parameter sets for the selected ids. Ids are matched longest first so that
// "a_b_x" goes to "a_b" when both "a" and "a_b" are selected. Keys that match
// no selected id are returned in rest.
func SplitPrefixedParams(selected []string, flat Params) (perStrategy map[string]Params, rest Params) {
	ids := make([]string, len(selected))
	copy(ids, selected)
	sort.Slice(ids, func(i, j int) bool { return len(ids[i]) > len(ids[j]) })

	perStrategy = make(map[string]Params, len(selected))
	for _, id := range selected {
		perStrategy[id] = Params{}
	}

	rest = Params{}

	for key, value := range flat {
		matched := false

		for _, id := range ids {
			prefix := id + "_"
			if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
				perStrategy[id][key[len(prefix):]] = value
				matched = true

				break
			}
		}

		if !matched {
			rest[key] = value
		}
	}

	return perStrategy, rest
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

func toStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))

		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}

			out = append(out, s)
		}

		return out, true
	case string:
		if list == "" {
			return []string{}, true
		}

		parts := strings.Split(list, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		return parts, true
	default:
		return nil, false
	}
}

func toNestedParams(v any) (map[string]Params, bool) {
	switch obj := v.(type) {
	case map[string]Params:
		return obj, true
	case map[string]map[string]any:
		out := make(map[string]Params, len(obj))
		for k, p := range obj {
			out[k] = Params(p)
		}

		return out, true
	case map[string]any:
		out := make(map[string]Params, len(obj))

		for k, p := range obj {
			inner, ok := toParams(p)
			if !ok {
				return nil, false
			}

			out[k] = inner
		}

		return out, true
	case map[any]any:
		out := make(map[string]Params, len(obj))

		for k, p := range obj {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}

			inner, ok := toParams(p)
			if !ok {
				return nil, false
			}

			out[key] = inner
		}

		return out, true
	default:
		return nil, false
	}
}

func toParams(v any) (Params, bool) {
	switch p := v.(type) {
	case Params:
		return p, true
	case map[string]any:
		return Params(p), true
	case map[any]any:
		out := make(Params, len(p))

		for k, val := range p {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}

			out[key] = val
		}

		return out, true
	case nil:
		return Params{}, true
	default:
		return nil, false
	}
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%v", f)
}
