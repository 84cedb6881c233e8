package taylor

import "math"

// DampingEpsilon keeps the damped relative error finite when the exact
// value is zero.
const DampingEpsilon = 1e-16

// BuildConvergenceTable returns one row per partial sum.
//
// With exact nil every error field is nil. Otherwise AbsError is
// |approx - exact|, and RelError (with RelErrorPct) is AbsError/|exact|,
// left nil when exact is zero.
func BuildConvergenceTable(partials []float64, exact *float64) []ConvergenceRow {
	rows := make([]ConvergenceRow, len(partials))
	for k, approx := range partials {
		row := ConvergenceRow{Order: k, Approx: approx}
		if exact != nil {
			ex := *exact
			abs := math.Abs(approx - ex)
			row.Exact = &ex
			row.AbsError = &abs
			if ex != 0 {
				rel := abs / math.Abs(ex)
				pct := rel * 100
				row.RelError = &rel
				row.RelErrorPct = &pct
			}
		}
		rows[k] = row
	}
	return rows
}

// DampedMetrics returns |approx - exact| and the damped relative error
// |approx - exact| / (|exact| + DampingEpsilon). Both are nil when exact is
// nil; the relative error is finite even when exact is zero.
func DampedMetrics(approx float64, exact *float64) ErrorMetrics {
	if exact == nil {
		return ErrorMetrics{}
	}
	abs := math.Abs(approx - *exact)
	rel := abs / (math.Abs(*exact) + DampingEpsilon)
	return ErrorMetrics{Absolute: &abs, Relative: &rel}
}
