package diff

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/roach88/taylorlab/internal/eval"
	"github.com/roach88/taylorlab/internal/expr"
)

var x = expr.X()

func mustOnce(t *testing.T, e expr.Expr) expr.Expr {
	t.Helper()
	d, err := Once(e)
	require.NoError(t, err)
	return d
}

func mustEval(t *testing.T, e expr.Expr, at float64) float64 {
	t.Helper()
	v, err := eval.Evaluate(e, at)
	require.NoError(t, err)
	return v
}

func TestOnce_Leaves(t *testing.T) {
	assert.Equal(t, expr.Num(0), mustOnce(t, expr.Num(7)))
	assert.Equal(t, expr.Num(1), mustOnce(t, x))
}

func TestOnce_ConstantSubtreeIsZero(t *testing.T) {
	tests := []expr.Expr{
		expr.Pow{Base: expr.Num(2), Exp: expr.Num(3)},
		expr.Func{Kind: expr.Log, Arg: expr.Num(-1)},
		expr.Add{Terms: []expr.Expr{expr.Num(1), expr.Func{Kind: expr.Sin, Arg: expr.Num(2)}}},
		expr.Mul{},
	}
	for i, e := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, expr.Num(0), mustOnce(t, e))
		})
	}
}

func TestOnce_RuleShapes(t *testing.T) {
	tests := []struct {
		name string
		e    expr.Expr
		want string
	}{
		{"power", expr.Power(x, expr.Num(3)), "3*x^2"},
		{"sin", expr.Apply(expr.Sin, x), "cos(x)"},
		{"cos", expr.Apply(expr.Cos, x), "-sin(x)"},
		{"tan", expr.Apply(expr.Tan, x), "1/cos(x)^2"},
		{"exp", expr.Apply(expr.Exp, x), "exp(x)"},
		{"log", expr.Apply(expr.Log, x), "1/x"},
		{"sqrt", expr.Apply(expr.Sqrt, x), "0.5/sqrt(x)"},
		{"sinh", expr.Apply(expr.Sinh, x), "cosh(x)"},
		{"cosh", expr.Apply(expr.Cosh, x), "sinh(x)"},
		{"chain", expr.Apply(expr.Sin, expr.Product(expr.Num(2), x)), "2*cos(2*x)"},
		{"product", expr.Product(x, expr.Apply(expr.Sin, x)), "sin(x) + x*cos(x)"},
		{"linear", expr.Sum(expr.Product(expr.Num(3), x), expr.Num(4)), "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expr.String(mustOnce(t, tt.e)))
		})
	}
}

func TestOnce_ProductRuleAtOne(t *testing.T) {
	d := mustOnce(t, expr.Product(x, expr.Apply(expr.Sin, x)))
	assert.InDelta(t, math.Sin(1)+math.Cos(1), mustEval(t, d, 1), 1e-12)
}

func TestOnce_Linearity(t *testing.T) {
	u := expr.Apply(expr.Sin, x)
	v := expr.Power(x, expr.Num(2))
	whole := mustOnce(t, expr.Sum(u, expr.Product(expr.Num(3), v)))
	parts := expr.Sum(mustOnce(t, u), expr.Product(expr.Num(3), mustOnce(t, v)))

	for _, at := range []float64{-2, -0.5, 0, 0.3, 1.7} {
		assert.InDelta(t, mustEval(t, parts, at), mustEval(t, whole, at), 1e-12, "x=%v", at)
	}
}

func TestOnce_RawTreeMatchesSimplified(t *testing.T) {
	// Unsimplified struct literals differentiate to the same function.
	raw := expr.Mul{Factors: []expr.Expr{
		expr.Const{Value: 1},
		expr.Pow{Base: expr.Var{}, Exp: expr.Const{Value: 2}},
		expr.Add{Terms: []expr.Expr{expr.Var{}, expr.Const{Value: 0}}},
	}}
	d := mustOnce(t, raw)
	for _, at := range []float64{-1, 0.5, 2} {
		assert.InDelta(t, 3*at*at, mustEval(t, d, at), 1e-12)
	}
}

// TestOnce_FiniteDifference cross-checks symbolic derivatives against a
// central finite difference of the evaluator.
func TestOnce_FiniteDifference(t *testing.T) {
	tests := []struct {
		name string
		e    expr.Expr
		at   float64
	}{
		{"sin of square", expr.Apply(expr.Sin, expr.Power(x, expr.Num(2))), 0.8},
		{"damped cosine", expr.Product(expr.Apply(expr.Exp, expr.Neg(x)), expr.Apply(expr.Cos, x)), 1.2},
		{"log of quadratic", expr.Apply(expr.Log, expr.Sum(expr.Num(1), expr.Power(x, expr.Num(2)))), -0.7},
		{"sqrt", expr.Apply(expr.Sqrt, x), 2},
		{"tan", expr.Apply(expr.Tan, x), 0.3},
		{"asin", expr.Apply(expr.Asin, expr.Quo(x, expr.Num(2))), 0.4},
		{"acos", expr.Apply(expr.Acos, x), -0.3},
		{"atan", expr.Apply(expr.Atan, expr.Product(expr.Num(3), x)), 0.25},
		{"sinh", expr.Apply(expr.Sinh, x), 1.1},
		{"cosh", expr.Apply(expr.Cosh, expr.Product(expr.Num(2), x)), -0.6},
		{"tanh", expr.Apply(expr.Tanh, x), 0.5},
		{"self power", expr.Power(x, x), 1.3},
		{"exponential base", expr.Power(expr.Num(2), x), 0.9},
		{"inverse square", expr.Power(x, expr.Num(-2)), 1.5},
		{"fractional power", expr.Power(expr.Sum(x, expr.Num(1)), expr.Num(0.5)), 0.2},
		{"sinc", expr.Quo(expr.Apply(expr.Sin, x), x), 0.7},
		{"nested", expr.Apply(expr.Exp, expr.Apply(expr.Sin, expr.Apply(expr.Cos, x))), 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustOnce(t, tt.e)
			symbolic := mustEval(t, d, tt.at)
			numeric := fd.Derivative(eval.Func(tt.e), tt.at, &fd.Settings{Formula: fd.Central})
			assert.InEpsilon(t, numeric, symbolic, 1e-6)
		})
	}
}

func TestK_SecondDerivativeFiniteDifference(t *testing.T) {
	tests := []struct {
		name string
		e    expr.Expr
		at   float64
	}{
		{"exp sin", expr.Apply(expr.Exp, expr.Apply(expr.Sin, x)), 0.5},
		{"rational", expr.Quo(expr.Num(1), expr.Sum(expr.Num(1), x)), 0.3},
		{"log", expr.Apply(expr.Log, x), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d2, err := K(tt.e, 2)
			require.NoError(t, err)
			symbolic := mustEval(t, d2, tt.at)
			numeric := fd.Derivative(eval.Func(tt.e), tt.at, &fd.Settings{Formula: fd.Central2nd})
			assert.InEpsilon(t, numeric, symbolic, 1e-4)
		})
	}
}

func TestOnce_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		e    expr.Expr
	}{
		{"nil", nil},
		{"nil child", expr.Add{Terms: []expr.Expr{x, nil}}},
		{"nil in constant subtree", expr.Mul{Factors: []expr.Expr{expr.Num(2), expr.Pow{Base: nil, Exp: expr.Num(1)}}}},
		{"unknown function", expr.Func{Kind: expr.FuncKind(99), Arg: x}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Once(tt.e)
			require.Error(t, err)
			assert.True(t, IsUnsupported(err))
		})
	}
}

func TestK_InvalidOrder(t *testing.T) {
	_, err := K(x, -1)
	require.Error(t, err)
	assert.True(t, IsInvalidOrder(err))
	assert.Contains(t, err.Error(), "got -1")

	_, err = Sequence(x, -3)
	assert.True(t, IsInvalidOrder(err))
}

func TestK_ZeroReturnsInput(t *testing.T) {
	e := expr.Apply(expr.Sin, x)
	got, err := K(e, 0)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestK_ExpIsFixedPoint(t *testing.T) {
	e := expr.Apply(expr.Exp, x)
	for k := 1; k <= 6; k++ {
		d, err := K(e, k)
		require.NoError(t, err)
		assert.True(t, expr.Equal(e, d), "k=%d", k)
	}
}

func TestK_PolynomialVanishes(t *testing.T) {
	p := expr.Sum(expr.Power(x, expr.Num(4)), expr.Product(expr.Num(-2), x), expr.Num(9))
	d, err := K(p, 5)
	require.NoError(t, err)
	assert.Equal(t, expr.Num(0), d)
}

func TestSequence_MatchesK(t *testing.T) {
	e := expr.Product(expr.Apply(expr.Cos, x), expr.Apply(expr.Exp, x))
	seq, err := Sequence(e, 4)
	require.NoError(t, err)
	require.Len(t, seq, 5)

	for k := range seq {
		d, err := K(e, k)
		require.NoError(t, err)
		assert.True(t, expr.Equal(d, seq[k]), "k=%d", k)
	}
}

func TestK_NodeBudget(t *testing.T) {
	e := expr.Apply(expr.Exp, expr.Apply(expr.Sin, x))
	_, err := K(e, 8, WithMaxNodes(50))
	require.Error(t, err)
	require.True(t, IsTreeTooLarge(err))

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Greater(t, de.Nodes, 50)
	assert.Equal(t, 50, de.Limit)
	assert.Positive(t, de.Order)

	_, err = K(e, 8, WithMaxNodes(0))
	assert.NoError(t, err)
}

func TestError_Message(t *testing.T) {
	err := newTreeTooLargeError(3, 120, 100)
	assert.Equal(t, "TREE_TOO_LARGE: derivative has 120 nodes, limit is 100 (order=3)", err.Error())
	assert.False(t, IsInvalidOrder(err))
	assert.False(t, IsUnsupported(fmt.Errorf("plain")))
}
