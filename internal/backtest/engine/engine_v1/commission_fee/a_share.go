package commission_fee

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/shopspring/decimal"
)

var (
	aShareCommissionRate  = decimal.RequireFromString("0.0003")
	aShareMinCommission   = decimal.NewFromInt(5)
	aShareStampDutyRate   = decimal.RequireFromString("0.001")
	aShareTransferFeeRate = decimal.RequireFromString("0.00002")
)

// AShareCommissionFee charges mainland exchange fees: commission of 0.03% with a
// 5 minimum on both sides, 0.1% stamp duty on sells and 0.002% transfer fee.
type AShareCommissionFee struct{}

func NewAShareCommissionFee() CommissionFee {
	return &AShareCommissionFee{}
}

func (c *AShareCommissionFee) Calculate(price float64, quantity int64, side types.Side) types.TradingCost {
	amount := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity))

	commission := decimal.Max(amount.Mul(aShareCommissionRate), aShareMinCommission)

	stampDuty := decimal.Zero
	if side == types.SideSell {
		stampDuty = amount.Mul(aShareStampDutyRate)
	}

	transferFee := amount.Mul(aShareTransferFeeRate)

	return types.TradingCost{
		Total:       commission.Add(stampDuty).Add(transferFee).InexactFloat64(),
		Commission:  commission.InexactFloat64(),
		StampDuty:   stampDuty.InexactFloat64(),
		TransferFee: transferFee.InexactFloat64(),
	}
}
