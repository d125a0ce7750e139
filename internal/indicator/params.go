package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// toInt converts a numeric parameter to int.
func toInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, errors.Newf(errors.ErrCodeInvalidType, "%s must be an integer, got %v", name, n)
		}

		return int(n), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int, got %T", name, v)
	}
}

func positivePeriod(name string, v any) (int, error) {
	p, err := toInt(name, v)
	if err != nil {
		return 0, err
	}

	if p <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, p)
	}

	return p, nil
}

func expectParams(name string, params []any, sig string, n int) error {
	if len(params) != n {
		return errors.New(errors.ErrCodeInvalidParameter, fmt.Sprintf("%s Config expects %d parameters: %s", name, n, sig))
	}

	return nil
}
