// Package eval reduces expression trees to float64 values.
//
// Evaluation is strictly real-valued: there is no complex promotion. Any
// operation that leaves the real domain, and any intermediate result that is
// not finite, fails with a *DomainError instead of propagating NaN or Inf.
package eval

import (
	"fmt"
	"math"

	"github.com/roach88/taylorlab/internal/expr"
)

// Func adapts e to a plain func(float64) float64 for numeric routines.
// Points where evaluation fails map to NaN.
func Func(e expr.Expr) func(float64) float64 {
	return func(x float64) float64 {
		v, err := Evaluate(e, x)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// Evaluate substitutes x for the variable and reduces e bottom-up.
//
// 0^0 evaluates to 1. Empty sums are 0 and empty products are 1.
func Evaluate(e expr.Expr, x float64) (float64, error) {
	switch n := e.(type) {
	case expr.Const:
		return finite("const", n.Value, x, n.Value)
	case expr.Var:
		return finite("var", x, x, x)
	case expr.Add:
		sum := 0.0
		for _, t := range n.Terms {
			v, err := Evaluate(t, x)
			if err != nil {
				return 0, err
			}
			sum += v
		}
		return finite("add", sum, x, sum)
	case expr.Mul:
		prod := 1.0
		for _, f := range n.Factors {
			v, err := Evaluate(f, x)
			if err != nil {
				return 0, err
			}
			prod *= v
		}
		return finite("mul", prod, x, prod)
	case expr.Pow:
		return evaluatePow(n, x)
	case expr.Func:
		return evaluateFunc(n, x)
	default:
		return 0, fmt.Errorf("evaluate: unsupported node type %T", e)
	}
}

func evaluatePow(p expr.Pow, x float64) (float64, error) {
	base, err := Evaluate(p.Base, x)
	if err != nil {
		return 0, err
	}
	exp, err := Evaluate(p.Exp, x)
	if err != nil {
		return 0, err
	}
	switch {
	case base == 0 && exp < 0:
		return 0, &DomainError{Op: "pow", Arg: base, X: x, Message: "division by zero"}
	case base < 0 && exp != math.Trunc(exp):
		return 0, &DomainError{
			Op:      "pow",
			Arg:     base,
			X:       x,
			Message: fmt.Sprintf("negative base raised to non-integer exponent %s", expr.FormatNumber(exp)),
		}
	}
	v := math.Pow(base, exp)
	return finite("pow", v, x, base)
}

func evaluateFunc(f expr.Func, x float64) (float64, error) {
	arg, err := Evaluate(f.Arg, x)
	if err != nil {
		return 0, err
	}
	switch f.Kind {
	case expr.Log:
		if arg <= 0 {
			return 0, &DomainError{Op: "log", Arg: arg, X: x, Message: "logarithm of non-positive value"}
		}
	case expr.Sqrt:
		if arg < 0 {
			return 0, &DomainError{Op: "sqrt", Arg: arg, X: x, Message: "square root of negative value"}
		}
	case expr.Asin, expr.Acos:
		if arg < -1 || arg > 1 {
			return 0, &DomainError{Op: f.Kind.String(), Arg: arg, X: x, Message: "argument outside [-1, 1]"}
		}
	}
	if !f.Kind.Valid() {
		return 0, fmt.Errorf("evaluate: invalid function kind %d", int(f.Kind))
	}
	return finite(f.Kind.String(), f.Kind.Apply(arg), x, arg)
}

// finite passes v through, or fails when it is NaN or infinite.
func finite(op string, v, x, arg float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, &DomainError{Op: op, Arg: arg, X: x, Message: "result is not a number"}
	}
	if math.IsInf(v, 0) {
		return 0, &DomainError{Op: op, Arg: arg, X: x, Message: "result is not finite"}
	}
	return v, nil
}
