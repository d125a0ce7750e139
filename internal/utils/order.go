package utils

import (
	"math"
)

// CalculateMaxLots returns how many whole lots of lotSize shares at price fit
// into cash*ratio, before costs.
func CalculateMaxLots(cash float64, price float64, ratio float64, lotSize int64) int64 {
	// Handle edge cases
	if price <= 0 || cash <= 0 || ratio <= 0 || lotSize <= 0 {
		return 0
	}

	return int64(math.Floor(cash * ratio / (price * float64(lotSize))))
}

// CalculateOrderQuantity returns the share count of CalculateMaxLots.
func CalculateOrderQuantity(cash float64, price float64, ratio float64, lotSize int64) int64 {
	return CalculateMaxLots(cash, price, ratio, lotSize) * lotSize
}

// RoundDownToLot rounds quantity down to a whole number of lots.
func RoundDownToLot(quantity int64, lotSize int64) int64 {
	if lotSize <= 0 || quantity <= 0 {
		return 0
	}

	return quantity / lotSize * lotSize
}
