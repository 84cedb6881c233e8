package taylor

import (
	"github.com/roach88/taylorlab/internal/expr"
)

// EvaluateWithPartials returns P_n(x) and the partial sums P_0(x)..P_n(x).
//
// The power of dx is carried from term to term, so partials[k] is exactly
// the running total after adding c[k]*dx^k. At x == center every partial
// sum equals c[0].
func EvaluateWithPartials(c Coefficients, center, x float64) (float64, []float64) {
	dx := x - center
	partials := make([]float64, len(c))
	sum := 0.0
	power := 1.0
	for k, ck := range c {
		if k > 0 {
			power *= dx
		}
		sum += ck * power
		partials[k] = sum
	}
	return sum, partials
}

// DerivativeOfPolynomial returns P_n'(x), the sum of k*c[k]*dx^(k-1) for
// k = 1..n.
func DerivativeOfPolynomial(c Coefficients, center, x float64) float64 {
	dx := x - center
	sum := 0.0
	power := 1.0
	for k := 1; k < len(c); k++ {
		sum += float64(k) * c[k] * power
		power *= dx
	}
	return sum
}

// PolynomialExpr builds P_n as a tree in ascending powers of (x - center).
// Zero coefficients are omitted.
func PolynomialExpr(c Coefficients, center float64) expr.Expr {
	shift := expr.Minus(expr.X(), expr.Num(center))
	terms := make([]expr.Expr, 0, len(c))
	for k, ck := range c {
		if ck == 0 {
			continue
		}
		terms = append(terms, expr.Product(expr.Num(ck), expr.Power(shift, expr.Num(float64(k)))))
	}
	switch len(terms) {
	case 0:
		return expr.Num(0)
	case 1:
		return terms[0]
	}
	// Built directly so the constant term stays first.
	return expr.Add{Terms: terms}
}
