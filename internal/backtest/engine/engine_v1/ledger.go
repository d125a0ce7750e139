package engine

import (
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// AverageCost returns the average cost after adding newQty shares at newPrice
// to curQty shares held at curAvg.
func AverageCost(curQty int64, curAvg optional.Option[float64], newQty int64, newPrice float64) float64 {
	if curQty == 0 || curAvg.IsNone() {
		return newPrice
	}

	held := decimal.NewFromFloat(curAvg.Unwrap()).Mul(decimal.NewFromInt(curQty))
	added := decimal.NewFromFloat(newPrice).Mul(decimal.NewFromInt(newQty))
	total := decimal.NewFromInt(curQty + newQty)

	return held.Add(added).Div(total).InexactFloat64()
}

// Equity is cash plus the market value of qty shares at price.
func Equity(cash float64, qty int64, price float64) float64 {
	return cash + float64(qty)*price
}
