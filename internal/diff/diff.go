// Package diff differentiates expression trees with respect to their single
// variable.
//
// Differentiation is purely syntactic: a fixed rule table applied
// recursively, with results assembled through the expr smart constructors so
// iterated derivatives stay small. The engine never evaluates anything and
// never fails on domain grounds; ln(b) or 1/u may appear in a derivative and
// only become errors when evaluated.
package diff

import (
	"fmt"

	"github.com/roach88/taylorlab/internal/expr"
)

// Once returns the first derivative of e.
//
// Rules:
//   - c' = 0, x' = 1
//   - any subtree free of x differentiates to 0
//   - (u + v)' = u' + v'
//   - (u1*...*un)' = sum over i of u1*...*ui'*...*un
//   - (b^n)' = n*b^(n-1)*b' when n is a literal constant
//   - (b^e)' = b^e*(e'*ln(b) + e*b'/b) otherwise
//   - f(u)' = f'(u)*u' from the chain table
func Once(e expr.Expr) (expr.Expr, error) {
	if err := checkGrammar(e); err != nil {
		return nil, err
	}
	return once(e), nil
}

// once assumes e passed checkGrammar.
func once(e expr.Expr) expr.Expr {
	switch e.(type) {
	case expr.Const:
		return expr.Num(0)
	case expr.Var:
		return expr.Num(1)
	}
	if !expr.DependsOnVar(e) {
		return expr.Num(0)
	}

	switch n := e.(type) {
	case expr.Add:
		terms := make([]expr.Expr, len(n.Terms))
		for i, t := range n.Terms {
			terms[i] = once(t)
		}
		return expr.Sum(terms...)

	case expr.Mul:
		return productRule(n.Factors)

	case expr.Pow:
		if c, ok := n.Exp.(expr.Const); ok {
			return expr.Product(
				c,
				expr.Power(n.Base, expr.Num(c.Value-1)),
				once(n.Base),
			)
		}
		// b^e * (e'*ln(b) + e*b'/b)
		return expr.Product(
			n,
			expr.Sum(
				expr.Product(once(n.Exp), expr.Apply(expr.Log, n.Base)),
				expr.Product(n.Exp, once(n.Base), expr.Power(n.Base, expr.Num(-1))),
			),
		)

	case expr.Func:
		du := once(n.Arg)
		if c, ok := du.(expr.Const); ok && c.Value == 0 {
			return expr.Num(0)
		}
		return expr.Product(chainFactor(n.Kind, n.Arg), du)
	}

	// Unreachable after checkGrammar.
	return expr.Num(0)
}

func productRule(factors []expr.Expr) expr.Expr {
	terms := make([]expr.Expr, 0, len(factors))
	for i, f := range factors {
		df := once(f)
		if c, ok := df.(expr.Const); ok && c.Value == 0 {
			continue
		}
		term := make([]expr.Expr, len(factors))
		copy(term, factors)
		term[i] = df
		terms = append(terms, expr.Product(term...))
	}
	return expr.Sum(terms...)
}

// chainFactor returns f'(u) for f(u).
func chainFactor(kind expr.FuncKind, u expr.Expr) expr.Expr {
	switch kind {
	case expr.Sin:
		return expr.Apply(expr.Cos, u)
	case expr.Cos:
		return expr.Neg(expr.Apply(expr.Sin, u))
	case expr.Tan:
		return expr.Power(expr.Apply(expr.Cos, u), expr.Num(-2))
	case expr.Exp:
		return expr.Apply(expr.Exp, u)
	case expr.Log:
		return expr.Power(u, expr.Num(-1))
	case expr.Sqrt:
		return expr.Power(expr.Product(expr.Num(2), expr.Apply(expr.Sqrt, u)), expr.Num(-1))
	case expr.Asin:
		return asinFactor(u)
	case expr.Acos:
		return expr.Neg(asinFactor(u))
	case expr.Atan:
		return expr.Power(expr.Sum(expr.Num(1), expr.Power(u, expr.Num(2))), expr.Num(-1))
	case expr.Sinh:
		return expr.Apply(expr.Cosh, u)
	case expr.Cosh:
		return expr.Apply(expr.Sinh, u)
	case expr.Tanh:
		return expr.Power(expr.Apply(expr.Cosh, u), expr.Num(-2))
	}
	// Unreachable after checkGrammar.
	return expr.Num(0)
}

// asinFactor is 1/sqrt(1 - u^2).
func asinFactor(u expr.Expr) expr.Expr {
	return expr.Power(
		expr.Apply(expr.Sqrt, expr.Minus(expr.Num(1), expr.Power(u, expr.Num(2)))),
		expr.Num(-1),
	)
}

// checkGrammar rejects nodes outside the closed grammar: nil children and
// undeclared function kinds.
func checkGrammar(e expr.Expr) error {
	switch n := e.(type) {
	case expr.Const, expr.Var:
		return nil
	case expr.Add:
		for _, t := range n.Terms {
			if err := checkGrammar(t); err != nil {
				return err
			}
		}
		return nil
	case expr.Mul:
		for _, f := range n.Factors {
			if err := checkGrammar(f); err != nil {
				return err
			}
		}
		return nil
	case expr.Pow:
		if err := checkGrammar(n.Base); err != nil {
			return err
		}
		return checkGrammar(n.Exp)
	case expr.Func:
		if !n.Kind.Valid() {
			return newUnsupportedError(fmt.Sprintf("function kind %d", int(n.Kind)))
		}
		return checkGrammar(n.Arg)
	default:
		return newUnsupportedError(fmt.Sprintf("node %T", e))
	}
}
