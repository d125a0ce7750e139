package indicator

import "math"

// Series helpers operate on whole columns. Undefined values are NaN, which
// compares false in every relation.

// SMA returns the simple moving average over window. The first window-1
// values are NaN, as is any window containing a NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}

		out[i] = sum / float64(window)
	}

	return out
}

// RollingMin returns the minimum over window, NaN during warm-up.
func RollingMin(values []float64, window int) []float64 {
	return rolling(values, window, math.Min)
}

// RollingMax returns the maximum over window, NaN during warm-up.
func RollingMax(values []float64, window int) []float64 {
	return rolling(values, window, math.Max)
}

func rolling(values []float64, window int, pick func(a, b float64) float64) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		acc := values[i-window+1]
		for _, v := range values[i-window+2 : i+1] {
			acc = pick(acc, v)
		}

		out[i] = acc
	}

	return out
}

// EWM returns the recursive exponentially weighted mean with smoothing alpha:
// y[0] = x[0], y[t] = (1-alpha)*y[t-1] + alpha*x[t].
// It starts at the first non-NaN value. A NaN input carries the previous
// mean forward and decays its weight, so the next observation is weighted
// against (1-alpha)^gap.
func EWM(values []float64, alpha float64) []float64 {
	out := nanSlice(len(values))
	weighted := math.NaN()
	oldWeight := 1.0
	decay := 1 - alpha

	for i, v := range values {
		observed := !math.IsNaN(v)

		switch {
		case math.IsNaN(weighted):
			if observed {
				weighted = v
				oldWeight = 1
			}
		default:
			oldWeight *= decay
			if observed {
				weighted = (oldWeight*weighted + alpha*v) / (oldWeight + alpha)
				oldWeight = 1
			}
		}

		out[i] = weighted
	}

	return out
}

// EMA returns the exponential moving average for span, alpha = 2/(span+1).
func EMA(values []float64, span int) []float64 {
	return EWM(values, 2/(float64(span)+1))
}

// Diff returns values[i] - values[i-1]; the first value is NaN.
func Diff(values []float64) []float64 {
	out := nanSlice(len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}

	return out
}

// CrossedAbove reports whether a crossed above b at i: a[i] > b[i] and a[i-1] <= b[i-1].
// The first bar never crosses.
func CrossedAbove(a, b []float64, i int) bool {
	if i <= 0 {
		return false
	}

	return a[i] > b[i] && a[i-1] <= b[i-1]
}

// CrossedBelow reports whether a crossed below b at i: a[i] < b[i] and a[i-1] >= b[i-1].
func CrossedBelow(a, b []float64, i int) bool {
	if i <= 0 {
		return false
	}

	return a[i] < b[i] && a[i-1] >= b[i-1]
}

// CrossedAboveLevel reports whether a crossed above a constant level at i.
func CrossedAboveLevel(a []float64, level float64, i int) bool {
	if i <= 0 {
		return false
	}

	return a[i] > level && a[i-1] <= level
}

// CrossedBelowLevel reports whether a crossed below a constant level at i.
func CrossedBelowLevel(a []float64, level float64, i int) bool {
	if i <= 0 {
		return false
	}

	return a[i] < level && a[i-1] >= level
}

// Ratio returns num/den, or false when den is zero or undefined.
func Ratio(num, den float64) (float64, bool) {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0, false
	}

	return num / den, true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
