package types

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Frame holds bars together with the indicator columns and signals a
// strategy derived from them. Column order follows insertion.
type Frame struct {
	Bars []Bar

	columns map[string][]float64
	order   []string

	// Signals is nil until a strategy generates them. A nil column means the
	// strategy abstained.
	Signals []Signal
	// Sources holds per-bar attribution for non-hold signals.
	Sources [][]string
	// Reasons holds per-bar human readable explanations, "" when none.
	Reasons []string
}

// NewFrame creates a frame over bars with no indicator columns.
func NewFrame(bars []Bar) *Frame {
	return &Frame{
		Bars:    bars,
		columns: make(map[string][]float64),
		order:   nil,
		Signals: nil,
		Sources: nil,
		Reasons: nil,
	}
}

// Len returns the number of bars.
func (f *Frame) Len() int {
	return len(f.Bars)
}

// SetColumn stores an indicator column. NaN warm-up values are stored as 0.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.Bars) {
		return errors.Newf(errors.ErrCodeIndicatorCalculation,
			"column %s has %d values, frame has %d bars", name, len(values), len(f.Bars))
	}

	filled := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		filled[i] = v
	}

	if _, ok := f.columns[name]; !ok {
		f.order = append(f.order, name)
	}

	f.columns[name] = filled

	return nil
}

// Column returns the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.columns[name]

	return col, ok
}

// Columns returns the names of the stored columns in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)

	return out
}

// HasSignals reports whether a signal column was generated.
func (f *Frame) HasSignals() bool {
	return f.Signals != nil
}

// InitSignals resets the signal, attribution and reason columns to Hold.
func (f *Frame) InitSignals() {
	f.Signals = make([]Signal, len(f.Bars))
	f.Sources = make([][]string, len(f.Bars))
	f.Reasons = make([]string, len(f.Bars))
}

// SetSignal writes one bar's decision.
func (f *Frame) SetSignal(i int, signal Signal, reason string, sources ...string) {
	f.Signals[i] = signal
	f.Reasons[i] = reason
	f.Sources[i] = sources
}

// SignalAt returns the composite signal of bar i. Hold when the strategy abstained.
func (f *Frame) SignalAt(i int) CompositeSignal {
	if f.Signals == nil || i >= len(f.Signals) {
		return CompositeSignal{Signal: SignalHold, Sources: nil}
	}

	return CompositeSignal{Signal: f.Signals[i], Sources: f.Sources[i]}
}

// ReasonAt returns the reason of bar i or "".
func (f *Frame) ReasonAt(i int) string {
	if f.Reasons == nil || i >= len(f.Reasons) {
		return ""
	}

	return f.Reasons[i]
}

// View returns a frame sharing f's bars and indicator columns but with its
// own signal columns.
func (f *Frame) View() *Frame {
	order := make([]string, len(f.order))
	copy(order, f.order)

	return &Frame{
		Bars:    f.Bars,
		columns: f.columns,
		order:   order,
		Signals: nil,
		Sources: nil,
		Reasons: nil,
	}
}

// Merge copies every column of other into f. Existing columns with the same
// name are replaced.
func (f *Frame) Merge(other *Frame) error {
	for _, name := range other.order {
		if err := f.SetColumn(name, other.columns[name]); err != nil {
			return err
		}
	}

	return nil
}
