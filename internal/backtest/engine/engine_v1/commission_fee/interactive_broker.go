package commission_fee

import "github.com/rxtech-lab/argo-backtest/internal/types"

type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

// Calculate charges 0.005 per share with a minimum of 1.
func (c *InteractiveBrokerCommissionFee) Calculate(_ float64, quantity int64, _ types.Side) types.TradingCost {
	fee := 0.005 * float64(quantity)
	if fee < 1.0 {
		fee = 1.0
	}

	return types.TradingCost{Total: fee, Commission: fee, StampDuty: 0, TransferFee: 0}
}
