package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/utils"
	"go.uber.org/zap"
)

// BacktestTrading fills market orders at the bar close against a BacktestState.
type BacktestTrading struct {
	state         *BacktestState
	commission    commission_fee.CommissionFee
	positionRatio float64
	lotSize       int64
}

func NewBacktestTrading(state *BacktestState, commission commission_fee.CommissionFee, positionRatio float64) *BacktestTrading {
	return &BacktestTrading{
		state:         state,
		commission:    commission,
		positionRatio: positionRatio,
		lotSize:       types.LotSize,
	}
}

// Buy spends up to positionRatio of cash on whole lots at the bar close.
// Nothing is filled when not even one lot fits or cash cannot cover the cost.
func (b *BacktestTrading) Buy(bar types.Bar, reason string, sources []string) optional.Option[types.Trade] {
	cash := b.state.Cash()

	quantity := utils.CalculateOrderQuantity(cash, bar.Close, b.positionRatio, b.lotSize)
	if quantity <= 0 {
		return optional.None[types.Trade]()
	}

	cost := b.commission.Calculate(bar.Close, quantity, types.SideBuy)
	if float64(quantity)*bar.Close+cost.Total > cash {
		b.state.logger.Debug("Buy skipped, cash does not cover cost",
			zap.Time("time", bar.Time),
			zap.Int64("quantity", quantity),
			zap.Float64("cost", cost.Total),
			zap.Float64("cash", cash),
		)

		return optional.None[types.Trade]()
	}

	return optional.Some(b.state.ApplyBuy(bar.Time, bar.Close, quantity, cost, reason, sources))
}

// Sell liquidates the whole position at the bar close. Nothing happens when flat.
// Fees are capped at the sale amount so a minimum commission on a near
// worthless position cannot leave cash negative.
func (b *BacktestTrading) Sell(bar types.Bar, reason string, sources []string) optional.Option[types.Trade] {
	position := b.state.Position()
	if position.IsFlat() {
		return optional.None[types.Trade]()
	}

	amount := float64(position.Quantity) * bar.Close

	cost := b.commission.Calculate(bar.Close, position.Quantity, types.SideSell)
	if cost.Total > amount {
		b.state.logger.Debug("Sell fees capped at sale amount",
			zap.Time("time", bar.Time),
			zap.Float64("amount", amount),
			zap.Float64("cost", cost.Total),
		)

		cost = cost.CapAt(amount)
	}

	return optional.Some(b.state.ApplySell(bar.Time, bar.Close, cost, reason, sources))
}
