package marker

import "github.com/rxtech-lab/argo-backtest/internal/types"

// Marker records chart annotations for executed trades.
type Marker interface {
	// Mark annotates the bar of trade. forced is set for exits taken by an exit
	// rule rather than the bar's own signal.
	Mark(bar types.Bar, trade types.Trade, forced bool) error
	// GetMarks returns all the marks in the order they were made
	GetMarks() ([]types.Mark, error)
}
