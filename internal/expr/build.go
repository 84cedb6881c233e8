package expr

import "math"

// Num returns a constant node.
func Num(v float64) Expr {
	return Const{Value: v}
}

// X returns the free variable.
func X() Expr {
	return Var{}
}

// Sum builds the sum of terms.
//
// Nested sums are flattened, constants are folded into a single trailing
// constant, and terms that differ only by a leading numeric coefficient are
// collected (2*cos(x) + cos(x) becomes 3*cos(x)). Term order is otherwise
// first-appearance order, so output is deterministic.
func Sum(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	flat = flattenAdd(flat, terms)

	type group struct {
		coef float64
		rest Expr
	}
	var groups []*group
	byKey := make(map[string]*group, len(flat))
	acc := 0.0

	for _, t := range flat {
		if c, ok := t.(Const); ok {
			acc += c.Value
			continue
		}
		coef, rest := splitCoefficient(t)
		key := String(rest)
		if g, ok := byKey[key]; ok {
			g.coef += coef
			continue
		}
		g := &group{coef: coef, rest: rest}
		byKey[key] = g
		groups = append(groups, g)
	}

	out := make([]Expr, 0, len(groups)+1)
	for _, g := range groups {
		if g.coef == 0 {
			continue
		}
		out = append(out, scale(g.coef, g.rest))
	}
	if acc != 0 {
		out = append(out, Num(acc))
	}

	switch len(out) {
	case 0:
		return Num(0)
	case 1:
		return out[0]
	}
	return Add{Terms: out}
}

// Product builds the product of factors.
//
// Nested products are flattened, constants are folded into a single leading
// constant, a zero constant annihilates the product, and factors sharing a
// base with constant exponents are merged (x*x^2 becomes x^3).
func Product(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	flat = flattenMul(flat, factors)

	type group struct {
		base Expr
		exp  float64
	}
	var groups []*group
	byKey := make(map[string]*group, len(flat))
	acc := 1.0

	for _, f := range flat {
		base, exp := f, 1.0
		switch n := f.(type) {
		case Const:
			acc *= n.Value
			continue
		case Pow:
			if c, ok := n.Exp.(Const); ok {
				base, exp = n.Base, c.Value
			}
		}
		key := String(base)
		if g, ok := byKey[key]; ok {
			g.exp += exp
			continue
		}
		g := &group{base: base, exp: exp}
		byKey[key] = g
		groups = append(groups, g)
	}
	if acc == 0 {
		return Num(0)
	}

	out := make([]Expr, 0, len(groups)+1)
	for _, g := range groups {
		switch p := Power(g.base, Num(g.exp)).(type) {
		case Const:
			acc *= p.Value
		case Mul:
			for _, f := range p.Factors {
				if c, ok := f.(Const); ok {
					acc *= c.Value
					continue
				}
				out = append(out, f)
			}
		default:
			out = append(out, p)
		}
	}
	if acc == 0 {
		return Num(0)
	}

	if len(out) == 0 {
		return Num(acc)
	}
	if acc != 1 {
		out = append([]Expr{Num(acc)}, out...)
	}
	if len(out) == 1 {
		return out[0]
	}
	return Mul{Factors: out}
}

// Power builds base^exp.
//
// With a constant exponent: u^0 is 1, u^1 is u, constant bases are folded
// when the result is finite, integer powers distribute over products and
// nested integer powers multiply out.
func Power(base, exp Expr) Expr {
	e, ok := exp.(Const)
	if !ok {
		return Pow{Base: base, Exp: exp}
	}
	switch e.Value {
	case 0:
		return Num(1)
	case 1:
		return base
	}

	switch b := base.(type) {
	case Const:
		if v := math.Pow(b.Value, e.Value); isFinite(v) {
			return Num(v)
		}
	case Mul:
		if isInteger(e.Value) {
			factors := make([]Expr, len(b.Factors))
			for i, f := range b.Factors {
				factors[i] = Power(f, exp)
			}
			return Product(factors...)
		}
	case Pow:
		if inner, ok := b.Exp.(Const); ok && isInteger(inner.Value) && isInteger(e.Value) {
			return Power(b.Base, Num(inner.Value*e.Value))
		}
	}
	return Pow{Base: base, Exp: exp}
}

// Apply builds kind(arg), folding constant arguments when the result is
// finite. Arguments outside the function's real domain are left unfolded so
// evaluation can report them.
func Apply(kind FuncKind, arg Expr) Expr {
	if c, ok := arg.(Const); ok {
		if v := kind.Apply(c.Value); isFinite(v) {
			return Num(v)
		}
	}
	return Func{Kind: kind, Arg: arg}
}

// Neg builds -e.
func Neg(e Expr) Expr {
	return Product(Num(-1), e)
}

// Minus builds a - b.
func Minus(a, b Expr) Expr {
	return Sum(a, Neg(b))
}

// Quo builds a / b as a * b^-1.
func Quo(a, b Expr) Expr {
	return Product(a, Power(b, Num(-1)))
}

// Apply evaluates the function on a float64 without domain checks.
// Values outside the real domain yield NaN.
func (k FuncKind) Apply(v float64) float64 {
	switch k {
	case Sin:
		return math.Sin(v)
	case Cos:
		return math.Cos(v)
	case Tan:
		return math.Tan(v)
	case Exp:
		return math.Exp(v)
	case Log:
		if v <= 0 {
			return math.NaN()
		}
		return math.Log(v)
	case Sqrt:
		return math.Sqrt(v)
	case Asin:
		return math.Asin(v)
	case Acos:
		return math.Acos(v)
	case Atan:
		return math.Atan(v)
	case Sinh:
		return math.Sinh(v)
	case Cosh:
		return math.Cosh(v)
	case Tanh:
		return math.Tanh(v)
	default:
		return math.NaN()
	}
}

func flattenAdd(dst, terms []Expr) []Expr {
	for _, t := range terms {
		if a, ok := t.(Add); ok {
			dst = flattenAdd(dst, a.Terms)
			continue
		}
		dst = append(dst, t)
	}
	return dst
}

func flattenMul(dst, factors []Expr) []Expr {
	for _, f := range factors {
		if m, ok := f.(Mul); ok {
			dst = flattenMul(dst, m.Factors)
			continue
		}
		dst = append(dst, f)
	}
	return dst
}

// splitCoefficient separates a leading numeric factor from a term.
func splitCoefficient(t Expr) (float64, Expr) {
	m, ok := t.(Mul)
	if !ok || len(m.Factors) < 2 {
		return 1, t
	}
	c, ok := m.Factors[0].(Const)
	if !ok {
		return 1, t
	}
	rest := m.Factors[1:]
	if len(rest) == 1 {
		return c.Value, rest[0]
	}
	return c.Value, Mul{Factors: append([]Expr(nil), rest...)}
}

// scale multiplies an already-normalized term by a coefficient without
// regrouping its factors.
func scale(coef float64, rest Expr) Expr {
	if coef == 1 {
		return rest
	}
	if m, ok := rest.(Mul); ok {
		factors := make([]Expr, 0, len(m.Factors)+1)
		factors = append(factors, Num(coef))
		factors = append(factors, m.Factors...)
		return Mul{Factors: factors}
	}
	return Mul{Factors: []Expr{Num(coef), rest}}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isInteger(v float64) bool {
	return isFinite(v) && v == math.Trunc(v)
}
