package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// LotSize is the minimum tradable unit in shares.
const LotSize int64 = 100

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradingCost is the fee breakdown of a single fill.
type TradingCost struct {
	Total       float64 `yaml:"total" json:"total"`
	Commission  float64 `yaml:"commission" json:"commission"`
	StampDuty   float64 `yaml:"stamp_duty" json:"stamp_duty"`
	TransferFee float64 `yaml:"transfer_fee" json:"transfer_fee"`
}

// CapAt limits Total to limit. The commission absorbs the reduction, so the
// breakdown still adds up to Total.
func (c TradingCost) CapAt(limit float64) TradingCost {
	if c.Total <= limit {
		return c
	}

	proportional := decimal.NewFromFloat(c.StampDuty).Add(decimal.NewFromFloat(c.TransferFee))
	commission := decimal.Max(decimal.NewFromFloat(limit).Sub(proportional), decimal.Zero)

	return TradingCost{
		Total:       limit,
		Commission:  commission.InexactFloat64(),
		StampDuty:   c.StampDuty,
		TransferFee: c.TransferFee,
	}
}

type Trade struct {
	ID       string    `csv:"id"`
	Time     time.Time `csv:"time"`
	Side     Side      `csv:"side"`
	Price    float64   `csv:"price"`
	Quantity int64     `csv:"quantity"`
	Cost     TradingCost
	// StockValue is the market value of the position right after the fill.
	StockValue float64 `csv:"stock_value"`
	// TotalAsset is cash after the fill plus StockValue.
	TotalAsset float64 `csv:"total_asset"`
	// PositionProfit is (price - average cost) * quantity held after a buy,
	// or * quantity sold for a sell.
	PositionProfit float64 `csv:"position_profit"`
	// Reason is set when the strategy or an exit rule explains the fill.
	Reason optional.Option[string]
	// Sources are the signal sources that caused the fill.
	Sources []string
}

// ReasonOrEmpty returns the trade reason or "".
func (t Trade) ReasonOrEmpty() string {
	return t.Reason.TakeOr("")
}

// Position is the single-instrument holding.
type Position struct {
	// Quantity is always a nonnegative multiple of LotSize.
	Quantity int64
	// AverageCost is Some iff Quantity > 0.
	AverageCost optional.Option[float64]
}

// IsFlat reports whether nothing is held.
func (p Position) IsFlat() bool {
	return p.Quantity == 0
}
