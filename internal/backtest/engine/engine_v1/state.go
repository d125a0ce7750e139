package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"go.uber.org/zap"
)

// BacktestState is the ledger of one run: cash, the single position, the
// trade log and the equity curve.
type BacktestState struct {
	logger      *logger.Logger
	cash        float64
	position    types.Position
	entryPrice  float64
	holdingDays int
	trades      []types.Trade
	equity      []float64
}

func NewBacktestState(logger *logger.Logger) *BacktestState {
	return &BacktestState{
		logger:      logger,
		cash:        0,
		position:    types.Position{Quantity: 0, AverageCost: optional.None[float64]()},
		entryPrice:  0,
		holdingDays: 0,
		trades:      nil,
		equity:      nil,
	}
}

// Initialize resets the ledger to a flat position holding initialCash.
func (b *BacktestState) Initialize(initialCash float64) {
	b.cash = initialCash
	b.position = types.Position{Quantity: 0, AverageCost: optional.None[float64]()}
	b.entryPrice = 0
	b.holdingDays = 0
	b.trades = nil
	b.equity = nil
}

func (b *BacktestState) Cash() float64 {
	return b.cash
}

func (b *BacktestState) Position() types.Position {
	return b.position
}

// Holding describes the open position for exit rules. EntryPrice is the price
// of the most recent buy.
func (b *BacktestState) Holding() types.HoldingState {
	return types.HoldingState{
		EntryPrice:  b.entryPrice,
		Quantity:    b.position.Quantity,
		HoldingDays: b.holdingDays,
	}
}

// RecordEquity appends the equity at price to the curve and returns it.
func (b *BacktestState) RecordEquity(price float64) float64 {
	value := Equity(b.cash, b.position.Quantity, price)
	b.equity = append(b.equity, value)

	return value
}

// Tick counts one more bar held. It does nothing while flat.
func (b *BacktestState) Tick() {
	if !b.position.IsFlat() {
		b.holdingDays++
	}
}

// ApplyBuy books a fill of quantity shares at price. The caller has checked
// that cash covers the notional plus cost.
func (b *BacktestState) ApplyBuy(at time.Time, price float64, quantity int64, cost types.TradingCost, reason string, sources []string) types.Trade {
	avg := AverageCost(b.position.Quantity, b.position.AverageCost, quantity, price)
	newQty := b.position.Quantity + quantity

	b.cash -= float64(quantity)*price + cost.Total
	b.position = types.Position{Quantity: newQty, AverageCost: optional.Some(avg)}
	b.entryPrice = price
	b.holdingDays = 0

	stockValue := float64(newQty) * price

	trade := types.Trade{
		ID:             uuid.New().String(),
		Time:           at,
		Side:           types.SideBuy,
		Price:          price,
		Quantity:       quantity,
		Cost:           cost,
		StockValue:     stockValue,
		TotalAsset:     b.cash + stockValue,
		PositionProfit: (price - avg) * float64(newQty),
		Reason:         reasonOf(reason),
		Sources:        sources,
	}

	b.trades = append(b.trades, trade)

	b.logger.Debug("Buy filled",
		zap.Time("time", at),
		zap.Float64("price", price),
		zap.Int64("quantity", quantity),
		zap.Float64("cash", b.cash),
	)

	return trade
}

// ApplySell liquidates the whole position at price.
func (b *BacktestState) ApplySell(at time.Time, price float64, cost types.TradingCost, reason string, sources []string) types.Trade {
	quantity := b.position.Quantity
	avg := b.position.AverageCost.TakeOr(price)

	b.cash += float64(quantity)*price - cost.Total
	b.position = types.Position{Quantity: 0, AverageCost: optional.None[float64]()}
	b.entryPrice = 0
	b.holdingDays = 0

	trade := types.Trade{
		ID:             uuid.New().String(),
		Time:           at,
		Side:           types.SideSell,
		Price:          price,
		Quantity:       quantity,
		Cost:           cost,
		StockValue:     0,
		TotalAsset:     b.cash,
		PositionProfit: (price - avg) * float64(quantity),
		Reason:         reasonOf(reason),
		Sources:        sources,
	}

	b.trades = append(b.trades, trade)

	b.logger.Debug("Sell filled",
		zap.Time("time", at),
		zap.Float64("price", price),
		zap.Int64("quantity", quantity),
		zap.Float64("cash", b.cash),
	)

	return trade
}

// GetAllTrades returns the trade log in execution order.
func (b *BacktestState) GetAllTrades() []types.Trade {
	return b.trades
}

// EquityCurve returns one equity value per processed bar.
func (b *BacktestState) EquityCurve() []float64 {
	return b.equity
}

func reasonOf(reason string) optional.Option[string] {
	if reason == "" {
		return optional.None[string]()
	}

	return optional.Some(reason)
}
