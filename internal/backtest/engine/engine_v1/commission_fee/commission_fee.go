package commission_fee

import "github.com/rxtech-lab/argo-backtest/internal/types"

type CommissionFee interface {
	// Calculate returns the fee breakdown of filling quantity shares at price on the given side.
	Calculate(price float64, quantity int64, side types.Side) types.TradingCost
}

type Broker string

const (
	BrokerAShare            Broker = "a_share"
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerAShare,
	BrokerInteractiveBroker,
	BrokerZero,
}

func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerAShare:
		return NewAShareCommissionFee()
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewAShareCommissionFee()
	}
}
