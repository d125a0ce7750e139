package engine

import (
	"fmt"
	"sync"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// BacktestMarker implements marker.Marker in memory. Marks are exported
// with the rest of the results by the writer.
type BacktestMarker struct {
	marks []types.Mark
	mu    sync.Mutex
}

func NewBacktestMarker() *BacktestMarker {
	return &BacktestMarker{
		marks: nil,
		mu:    sync.Mutex{},
	}
}

// Mark implements marker.Marker. Buys are marked with a green up triangle
// below the bar, signal sells with a red down triangle and forced exits with
// an orange cross, both above the bar.
func (m *BacktestMarker) Mark(bar types.Bar, trade types.Trade, forced bool) error {
	if m == nil {
		return fmt.Errorf("backtest marker is nil")
	}

	mark := types.Mark{
		Time:    trade.Time,
		Price:   bar.Low,
		Signal:  types.SignalBuy,
		Color:   types.MarkColorGreen,
		Shape:   types.MarkShapeTriangleUp,
		Title:   "B",
		Message: trade.ReasonOrEmpty(),
	}

	if trade.Side == types.SideSell {
		mark.Price = bar.High
		mark.Signal = types.SignalSell
		mark.Color = types.MarkColorRed
		mark.Shape = types.MarkShapeTriangleDown
		mark.Title = "S"

		if forced {
			mark.Color = types.MarkColorOrange
			mark.Shape = types.MarkShapeCross
			mark.Title = "X"
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.marks = append(m.marks, mark)

	return nil
}

// GetMarks implements marker.Marker.
func (m *BacktestMarker) GetMarks() ([]types.Mark, error) {
	if m == nil {
		return nil, fmt.Errorf("backtest marker is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Mark, len(m.marks))
	copy(out, m.marks)

	return out, nil
}

// Cleanup drops every mark.
func (m *BacktestMarker) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.marks = nil
}
