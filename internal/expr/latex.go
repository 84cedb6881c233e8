package expr

import "strings"

var latexNames = map[FuncKind]string{
	Sin:  `\sin`,
	Cos:  `\cos`,
	Tan:  `\tan`,
	Log:  `\ln`,
	Asin: `\arcsin`,
	Acos: `\arccos`,
	Atan: `\arctan`,
	Sinh: `\sinh`,
	Cosh: `\cosh`,
	Tanh: `\tanh`,
}

// LaTeX renders e as a LaTeX math fragment.
func LaTeX(e Expr) string {
	var b strings.Builder
	writeLaTeX(&b, e)
	return b.String()
}

func writeLaTeX(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case Const:
		b.WriteString(FormatNumber(n.Value))
	case Var:
		b.WriteString("x")
	case Add:
		if len(n.Terms) == 0 {
			b.WriteString("0")
			return
		}
		for i, t := range n.Terms {
			neg, abs := negated(t)
			switch {
			case i == 0 && neg:
				b.WriteByte('-')
				writeLaTeXTerm(b, abs)
			case i == 0:
				writeLaTeXTerm(b, t)
			case neg:
				b.WriteString(" - ")
				writeLaTeXTerm(b, abs)
			default:
				b.WriteString(" + ")
				writeLaTeXTerm(b, t)
			}
		}
	case Mul:
		writeLaTeXProduct(b, n.Factors)
	case Pow:
		if c, ok := n.Exp.(Const); ok && c.Value < 0 {
			writeLaTeXProduct(b, []Expr{n})
			return
		}
		if c, ok := n.Exp.(Const); ok && c.Value == 0.5 {
			b.WriteString(`\sqrt{`)
			writeLaTeX(b, n.Base)
			b.WriteByte('}')
			return
		}
		if powBaseNeedsParens(n.Base) {
			b.WriteString(`\left(`)
			writeLaTeX(b, n.Base)
			b.WriteString(`\right)`)
		} else {
			writeLaTeX(b, n.Base)
		}
		b.WriteString("^{")
		writeLaTeX(b, n.Exp)
		b.WriteByte('}')
	case Func:
		switch n.Kind {
		case Sqrt:
			b.WriteString(`\sqrt{`)
			writeLaTeX(b, n.Arg)
			b.WriteByte('}')
		case Exp:
			b.WriteString("e^{")
			writeLaTeX(b, n.Arg)
			b.WriteByte('}')
		default:
			b.WriteString(latexNames[n.Kind])
			b.WriteString(`\left(`)
			writeLaTeX(b, n.Arg)
			b.WriteString(`\right)`)
		}
	}
}

func writeLaTeXTerm(b *strings.Builder, t Expr) {
	if _, ok := t.(Add); ok {
		b.WriteString(`\left(`)
		writeLaTeX(b, t)
		b.WriteString(`\right)`)
		return
	}
	writeLaTeX(b, t)
}

func writeLaTeXProduct(b *strings.Builder, factors []Expr) {
	num, den := splitFraction(factors)
	if len(num) > 1 {
		if c, ok := num[0].(Const); ok && c.Value == -1 {
			b.WriteByte('-')
			num = num[1:]
		}
	}
	if len(den) > 0 {
		b.WriteString(`\frac{`)
		writeLaTeXFactors(b, num)
		b.WriteString("}{")
		writeLaTeXFactors(b, den)
		b.WriteByte('}')
		return
	}
	writeLaTeXFactors(b, num)
}

func writeLaTeXFactors(b *strings.Builder, factors []Expr) {
	if len(factors) == 0 {
		b.WriteString("1")
		return
	}
	for i, f := range factors {
		if i > 0 {
			b.WriteString(` \cdot `)
		}
		switch n := f.(type) {
		case Add, Mul:
			b.WriteString(`\left(`)
			writeLaTeX(b, f)
			b.WriteString(`\right)`)
		case Const:
			if n.Value < 0 && i > 0 {
				b.WriteString(`\left(`)
				writeLaTeX(b, f)
				b.WriteString(`\right)`)
			} else {
				writeLaTeX(b, f)
			}
		default:
			writeLaTeX(b, f)
		}
	}
}
