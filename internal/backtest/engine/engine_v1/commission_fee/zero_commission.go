package commission_fee

import "github.com/rxtech-lab/argo-backtest/internal/types"

// ZeroCommissionFee implements CommissionFee interface with zero commission.
type ZeroCommissionFee struct{}

// NewZeroCommissionFee creates a new zero commission fee.
func NewZeroCommissionFee() CommissionFee {
	return &ZeroCommissionFee{}
}

// Calculate returns a zero cost for any fill.
func (c *ZeroCommissionFee) Calculate(float64, int64, types.Side) types.TradingCost {
	return types.TradingCost{}
}
