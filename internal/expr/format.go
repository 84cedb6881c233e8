package expr

import (
	"strconv"
	"strings"
)

// String renders e as plain infix text, e.g. "2*cos(x) - x*sin(x)".
//
// Constants use the shortest representation that round-trips, so two trees
// with the same rendering denote the same function. Constructors rely on
// this for collecting like terms.
func String(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func (c Const) String() string { return String(c) }
func (v Var) String() string   { return String(v) }
func (a Add) String() string   { return String(a) }
func (m Mul) String() string   { return String(m) }
func (p Pow) String() string   { return String(p) }
func (f Func) String() string  { return String(f) }

// FormatNumber renders a float64 in shortest round-trip form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case Const:
		b.WriteString(FormatNumber(n.Value))
	case Var:
		b.WriteString("x")
	case Add:
		writeSum(b, n.Terms)
	case Mul:
		writeProduct(b, n.Factors)
	case Pow:
		writePow(b, n)
	case Func:
		b.WriteString(n.Kind.String())
		b.WriteByte('(')
		writeExpr(b, n.Arg)
		b.WriteByte(')')
	case nil:
		b.WriteString("<nil>")
	}
}

func writeSum(b *strings.Builder, terms []Expr) {
	if len(terms) == 0 {
		b.WriteString("0")
		return
	}
	for i, t := range terms {
		neg, abs := negated(t)
		switch {
		case i == 0 && neg:
			b.WriteByte('-')
			writeTerm(b, abs)
		case i == 0:
			writeTerm(b, t)
		case neg:
			b.WriteString(" - ")
			writeTerm(b, abs)
		default:
			b.WriteString(" + ")
			writeTerm(b, t)
		}
	}
}

// writeTerm writes a summand, parenthesizing nested sums.
func writeTerm(b *strings.Builder, t Expr) {
	if _, ok := t.(Add); ok {
		b.WriteByte('(')
		writeExpr(b, t)
		b.WriteByte(')')
		return
	}
	writeExpr(b, t)
}

// negated reports whether t prints with a leading minus and returns the
// term without it.
func negated(t Expr) (bool, Expr) {
	switch n := t.(type) {
	case Const:
		if n.Value < 0 {
			return true, Const{Value: -n.Value}
		}
	case Mul:
		if len(n.Factors) == 0 {
			return false, t
		}
		c, ok := n.Factors[0].(Const)
		if !ok || c.Value >= 0 {
			return false, t
		}
		rest := n.Factors[1:]
		if c.Value == -1 {
			if len(rest) == 1 {
				return true, rest[0]
			}
			return true, Mul{Factors: rest}
		}
		factors := make([]Expr, 0, len(n.Factors))
		factors = append(factors, Const{Value: -c.Value})
		factors = append(factors, rest...)
		return true, Mul{Factors: factors}
	}
	return false, t
}

// splitFraction partitions factors into numerator and denominator, moving
// powers with negative constant exponents below the line.
func splitFraction(factors []Expr) (num, den []Expr) {
	for _, f := range factors {
		if p, ok := f.(Pow); ok {
			if c, ok := p.Exp.(Const); ok && c.Value < 0 {
				if c.Value == -1 {
					den = append(den, p.Base)
				} else {
					den = append(den, Pow{Base: p.Base, Exp: Const{Value: -c.Value}})
				}
				continue
			}
		}
		num = append(num, f)
	}
	return num, den
}

func writeProduct(b *strings.Builder, factors []Expr) {
	if len(factors) == 0 {
		b.WriteString("1")
		return
	}
	num, den := splitFraction(factors)

	if len(num) > 1 {
		if c, ok := num[0].(Const); ok && c.Value == -1 {
			b.WriteByte('-')
			num = num[1:]
		}
	}
	if len(num) == 0 {
		b.WriteString("1")
	}
	for i, f := range num {
		if i > 0 {
			b.WriteByte('*')
		}
		writeFactor(b, f, i == 0)
	}

	if len(den) == 0 {
		return
	}
	b.WriteByte('/')
	if len(den) > 1 {
		b.WriteByte('(')
	}
	for i, f := range den {
		if i > 0 {
			b.WriteByte('*')
		}
		writeFactor(b, f, true)
	}
	if len(den) > 1 {
		b.WriteByte(')')
	}
}

// writeFactor writes a multiplicand. Sums, nested products and negative
// constants after the first position get parentheses.
func writeFactor(b *strings.Builder, f Expr, first bool) {
	paren := false
	switch n := f.(type) {
	case Add, Mul:
		paren = true
	case Const:
		paren = n.Value < 0 && !first
	case Pow:
		if c, ok := n.Exp.(Const); ok && c.Value < 0 {
			paren = true
		}
	}
	if paren {
		b.WriteByte('(')
		writeExpr(b, f)
		b.WriteByte(')')
		return
	}
	writeExpr(b, f)
}

func writePow(b *strings.Builder, p Pow) {
	if c, ok := p.Exp.(Const); ok && c.Value < 0 {
		writeProduct(b, []Expr{p})
		return
	}
	if powBaseNeedsParens(p.Base) {
		b.WriteByte('(')
		writeExpr(b, p.Base)
		b.WriteByte(')')
	} else {
		writeExpr(b, p.Base)
	}
	b.WriteByte('^')
	switch n := p.Exp.(type) {
	case Var:
		b.WriteString("x")
	case Const:
		b.WriteString(FormatNumber(n.Value))
	default:
		b.WriteByte('(')
		writeExpr(b, p.Exp)
		b.WriteByte(')')
	}
}

func powBaseNeedsParens(base Expr) bool {
	switch n := base.(type) {
	case Add, Mul, Pow:
		return true
	case Const:
		return n.Value < 0
	}
	return false
}
