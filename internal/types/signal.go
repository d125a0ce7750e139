package types

// Signal is the per-bar decision of a signal source.
type Signal int8

const (
	// SignalSell tells the engine to liquidate the whole position.
	SignalSell Signal = -1
	// SignalHold tells the engine to do nothing.
	SignalHold Signal = 0
	// SignalBuy tells the engine to buy with the configured position ratio.
	SignalBuy Signal = 1
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "hold"
	}
}

// CompositeSignal is a fused signal plus the ids of the sources that produced it.
type CompositeSignal struct {
	Signal  Signal   `yaml:"signal" json:"signal"`
	Sources []string `yaml:"sources" json:"sources"`
}
