package taylor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/taylorlab/internal/diff"
	"github.com/roach88/taylorlab/internal/eval"
	"github.com/roach88/taylorlab/internal/expr"
)

var (
	x    = expr.X()
	sinx = expr.Apply(expr.Sin, x)
	expx = expr.Apply(expr.Exp, x)
)

func TestBuildCoefficients_Sin(t *testing.T) {
	c, err := BuildCoefficients(sinx, 0, 5)
	require.NoError(t, err)
	require.Len(t, c, 6)

	want := []float64{0, 1, 0, -1.0 / 6, 0, 1.0 / 120}
	for k := range want {
		assert.InDelta(t, want[k], c[k], 1e-15, "c[%d]", k)
	}
}

func TestBuildCoefficients_Exp(t *testing.T) {
	c, err := BuildCoefficients(expx, 0, 3)
	require.NoError(t, err)

	want := []float64{1, 1, 0.5, 1.0 / 6}
	require.Len(t, c, len(want))
	for k := range want {
		assert.InDelta(t, want[k], c[k], 1e-15, "c[%d]", k)
	}
}

func TestBuildCoefficients_ShiftedCenter(t *testing.T) {
	// ln(x) around 1: 0, 1, -1/2, 1/3, -1/4
	c, err := BuildCoefficients(expr.Apply(expr.Log, x), 1, 4)
	require.NoError(t, err)

	want := []float64{0, 1, -0.5, 1.0 / 3, -0.25}
	for k := range want {
		assert.InDelta(t, want[k], c[k], 1e-14, "c[%d]", k)
	}
}

func TestBuildCoefficients_DomainErrorFailsWholeCall(t *testing.T) {
	c, err := BuildCoefficients(expr.Apply(expr.Log, x), 0, 3)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, eval.IsDomainError(err))
	assert.Contains(t, err.Error(), "coefficient 0")
}

func TestBuildCoefficients_DomainErrorAtHigherOrder(t *testing.T) {
	// sqrt(x) is defined at 0 but its derivative is not.
	_, err := BuildCoefficients(expr.Apply(expr.Sqrt, x), 0, 2)
	require.Error(t, err)
	assert.True(t, eval.IsDomainError(err))
	assert.Contains(t, err.Error(), "coefficient 1")
}

func TestBuildCoefficients_InvalidOrder(t *testing.T) {
	_, err := BuildCoefficients(sinx, 0, -1)
	require.Error(t, err)
	assert.True(t, diff.IsInvalidOrder(err))
}

func TestEvaluateWithPartials_MonotoneError(t *testing.T) {
	c, err := BuildCoefficients(expx, 0, 8)
	require.NoError(t, err)

	value, partials := EvaluateWithPartials(c, 0, 0.5)
	require.Len(t, partials, 9)
	assert.Equal(t, partials[8], value)

	exact := math.Exp(0.5)
	prev := math.Inf(1)
	for k, p := range partials {
		errK := math.Abs(p - exact)
		assert.LessOrEqual(t, errK, prev, "k=%d", k)
		prev = errK
	}
	assert.Less(t, prev, 1e-8)
}

func TestEvaluateWithPartials_AtCenter(t *testing.T) {
	for _, center := range []float64{0, 0.5, -2} {
		c, err := BuildCoefficients(expr.Apply(expr.Cos, x), center, 6)
		require.NoError(t, err)

		value, partials := EvaluateWithPartials(c, center, center)
		assert.Equal(t, c[0], value)
		for _, p := range partials {
			assert.Equal(t, c[0], p)
		}
	}
}

func TestEvaluateWithPartials_Empty(t *testing.T) {
	value, partials := EvaluateWithPartials(nil, 0, 1)
	assert.Equal(t, 0.0, value)
	assert.Empty(t, partials)
}

func TestDerivativeOfPolynomial(t *testing.T) {
	c, err := BuildCoefficients(sinx, 0, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, DerivativeOfPolynomial(c, 0, 0), 1e-15)

	// P(x) = 1 + 2(x-1) + 3(x-1)^2, P'(3) = 2 + 6*2
	assert.Equal(t, 14.0, DerivativeOfPolynomial(Coefficients{1, 2, 3}, 1, 3))
	assert.Equal(t, 0.0, DerivativeOfPolynomial(Coefficients{5}, 0, 10))
}

func TestPolynomialExpr(t *testing.T) {
	tests := []struct {
		name   string
		c      Coefficients
		center float64
		want   string
	}{
		{"sin at zero", Coefficients{0, 1, 0, -1.0 / 6, 0, 1.0 / 120}, 0, "x - 0.16666666666666666*x^3 + 0.008333333333333333*x^5"},
		{"shifted square", Coefficients{1, 2, 1}, 1, "1 + 2*(x - 1) + (x - 1)^2"},
		{"negative center", Coefficients{0, 0, 1}, -1, "(x + 1)^2"},
		{"all zero", Coefficients{0, 0}, 3, "0"},
		{"constant", Coefficients{4}, 2, "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expr.String(PolynomialExpr(tt.c, tt.center)))
		})
	}
}

func TestPolynomialExpr_EvaluatesLikePartials(t *testing.T) {
	c := Coefficients{1, -2, 0.5, 0.25}
	p := PolynomialExpr(c, 0.5)
	for _, at := range []float64{-1, 0.5, 2} {
		want, _ := EvaluateWithPartials(c, 0.5, at)
		got, err := eval.Evaluate(p, at)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12)
	}
}

func TestBuildConvergenceTable_NoExact(t *testing.T) {
	rows := BuildConvergenceTable([]float64{1, 2}, nil)
	require.Len(t, rows, 2)
	for k, r := range rows {
		assert.Equal(t, k, r.Order)
		assert.Nil(t, r.Exact)
		assert.Nil(t, r.AbsError)
		assert.Nil(t, r.RelError)
		assert.Nil(t, r.RelErrorPct)
	}
}

func TestBuildConvergenceTable_WithExact(t *testing.T) {
	exact := 2.0
	rows := BuildConvergenceTable([]float64{1, 1.5, 2}, &exact)
	require.Len(t, rows, 3)

	assert.Equal(t, 1.0, rows[0].Approx)
	assert.Equal(t, 2.0, *rows[0].Exact)
	assert.Equal(t, 1.0, *rows[0].AbsError)
	assert.Equal(t, 0.5, *rows[0].RelError)
	assert.Equal(t, 50.0, *rows[0].RelErrorPct)
	assert.Equal(t, 0.25, *rows[1].RelError)
	assert.Equal(t, 0.0, *rows[2].AbsError)
}

func TestBuildConvergenceTable_ZeroExact(t *testing.T) {
	exact := 0.0
	rows := BuildConvergenceTable([]float64{0.5}, &exact)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.5, *rows[0].AbsError)
	assert.Nil(t, rows[0].RelError)
	assert.Nil(t, rows[0].RelErrorPct)
}

func TestBuildConvergenceTable_RowsDoNotAlias(t *testing.T) {
	exact := 1.0
	rows := BuildConvergenceTable([]float64{0, 0.5}, &exact)
	exact = 99
	assert.Equal(t, 1.0, *rows[0].Exact)
	assert.NotSame(t, rows[0].Exact, rows[1].Exact)
}

func TestDampedMetrics(t *testing.T) {
	assert.Equal(t, ErrorMetrics{}, DampedMetrics(1, nil))

	exact := 4.0
	m := DampedMetrics(5, &exact)
	assert.Equal(t, 1.0, *m.Absolute)
	assert.InDelta(t, 0.25, *m.Relative, 1e-15)

	zero := 0.0
	m = DampedMetrics(1e-20, &zero)
	require.NotNil(t, m.Relative)
	assert.False(t, math.IsInf(*m.Relative, 0))
	assert.InDelta(t, 1e-4, *m.Relative, 1e-18)
}

func TestSample_DefaultWindow(t *testing.T) {
	c, err := BuildCoefficients(expr.Apply(expr.Log, x), 1, 3)
	require.NoError(t, err)

	s, err := Sample(expr.Apply(expr.Log, x), c, 1, PlotRange{})
	require.NoError(t, err)
	assert.Equal(t, -1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	require.Len(t, s.X, DefaultNumPoints)
	require.Len(t, s.F, DefaultNumPoints)
	require.Len(t, s.P, DefaultNumPoints)

	assert.Equal(t, -1.0, s.X[0])
	assert.Equal(t, 3.0, s.X[len(s.X)-1])
	assert.Nil(t, s.F[0], "log undefined at -1")
	assert.NotNil(t, s.P[0])
	require.NotNil(t, s.F[len(s.F)-1])
	assert.InDelta(t, math.Log(3), *s.F[len(s.F)-1], 1e-12)
}

func TestSample_ExplicitRange(t *testing.T) {
	s, err := Sample(sinx, Coefficients{0, 1}, 0, PlotRange{Min: -2, Max: 2, NumPoints: 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, s.X)
	assert.Equal(t, 1.0, *s.P[3])
}

func TestSample_InvalidRange(t *testing.T) {
	_, err := Sample(sinx, Coefficients{0}, 0, PlotRange{Min: 2, Max: 1})
	require.Error(t, err)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrCodeInvalidPlot, te.Code)

	_, err = Sample(sinx, Coefficients{0}, 0, PlotRange{Min: 0, Max: 1, NumPoints: 1})
	require.Error(t, err)
}

func TestDefaultWindow(t *testing.T) {
	lo, hi := DefaultWindow(0)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)

	lo, hi = DefaultWindow(-3)
	assert.Equal(t, -7.0, lo)
	assert.Equal(t, 1.0, hi)
}
