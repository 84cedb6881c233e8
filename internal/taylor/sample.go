package taylor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/roach88/taylorlab/internal/eval"
	"github.com/roach88/taylorlab/internal/expr"
)

// DefaultNumPoints is the sample count used when PlotRange.NumPoints is 0.
const DefaultNumPoints = 300

// DefaultWindow returns the sampling range used when none is given:
// center ± max(1, |center|+1).
func DefaultWindow(center float64) (lo, hi float64) {
	span := math.Max(1, math.Abs(center)+1)
	return center - span, center + span
}

// Sample evaluates f and P_n on NumPoints evenly spaced points of r.
// Points where either value is undefined are kept with a nil entry.
func Sample(e expr.Expr, c Coefficients, center float64, r PlotRange) (*Series, error) {
	lo, hi := r.Min, r.Max
	if lo == 0 && hi == 0 {
		lo, hi = DefaultWindow(center)
	}
	n := r.NumPoints
	if n == 0 {
		n = DefaultNumPoints
	}
	if !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, &Error{Code: ErrCodeInvalidPlot, Message: fmt.Sprintf("plot range [%g, %g] is empty", lo, hi)}
	}
	if n < 2 {
		return nil, &Error{Code: ErrCodeInvalidPlot, Message: fmt.Sprintf("need at least 2 points, got %d", n)}
	}

	xs := floats.Span(make([]float64, n), lo, hi)
	f := eval.Func(e)
	s := &Series{
		Min: lo,
		Max: hi,
		X:   xs,
		F:   make([]*float64, n),
		P:   make([]*float64, n),
	}
	for i, xv := range xs {
		s.F[i] = finitePtr(f(xv))
		p, _ := EvaluateWithPartials(c, center, xv)
		s.P[i] = finitePtr(p)
	}
	return s, nil
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
