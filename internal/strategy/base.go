package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// base carries what every built-in source shares.
type base struct {
	descriptor Descriptor
	params     Params
}

func newBase(desc Descriptor, params Params) base {
	return base{descriptor: desc, params: params.Clone()}
}

func (b *base) ID() string {
	return b.descriptor.ID
}

func (b *base) Params() Params {
	return b.params.Clone()
}

// paramString formats the effective parameters in declaration order.
func (b *base) paramString() string {
	return b.params.String(b.descriptor.Params...)
}

// column reads an indicator column, computing the indicators once if it is missing.
func column(frame *types.Frame, name string, compute func(*types.Frame) error) ([]float64, error) {
	if col, ok := frame.Column(name); ok {
		return col, nil
	}

	if err := compute(frame); err != nil {
		return nil, err
	}

	col, ok := frame.Column(name)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator column %s was not computed", name)
	}

	return col, nil
}

func indicatorError(id string, err error) error {
	return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "strategy %s failed to compute indicators", id)
}

func configError(id string, err error) error {
	return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "strategy %s has invalid parameters", id)
}
