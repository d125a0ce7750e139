package types

// HoldingState describes the open position for exit rules.
type HoldingState struct {
	EntryPrice  float64
	Quantity    int64
	HoldingDays int
}

// ExecutionPolicy changes how the engine acts on a strategy's signals.
type ExecutionPolicy interface {
	// AllowPyramiding reports whether Buy signals are executed while holding.
	AllowPyramiding() bool
	// ShouldExit runs on every bar while holding, before the bar's own signal.
	// HoldingDays has already been incremented for this bar.
	ShouldExit(bar Bar, holding HoldingState) (bool, string)
}

// DefaultExecutionPolicy pyramids buys and never forces an exit.
type DefaultExecutionPolicy struct{}

func (DefaultExecutionPolicy) AllowPyramiding() bool { return true }

func (DefaultExecutionPolicy) ShouldExit(Bar, HoldingState) (bool, string) { return false, "" }
