// Package parse turns user-typed text into expression trees.
//
// It accepts plain infix ("sin(x) + x^2", "x**3", "2x", "e^x", "pi") and the
// LaTeX subset emitted by math input widgets ("\frac{1}{x}", "\sqrt{x}",
// "\sin\left(x\right)", "x \cdot e^{x}"). The trees come from the expr smart
// constructors, so trivial simplifications already apply.
package parse

import (
	"math"

	"github.com/roach88/taylorlab/internal/expr"
)

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 256

// inverses maps f^{-1} onto the named inverse function.
var inverses = map[expr.FuncKind]expr.FuncKind{
	expr.Sin: expr.Asin,
	expr.Cos: expr.Acos,
	expr.Tan: expr.Atan,
}

type parser struct {
	toks  []token
	i     int
	depth int
}

// Parse parses src into an expression in x.
func Parse(src string) (expr.Expr, error) {
	toks, err := scan(normalize(src))
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, errorf(0, "empty expression")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, errorf(t.pos, "unexpected %s", describe(t))
	}
	return e, nil
}

// MustParse is Parse for known-good literals. It panics on error.
func MustParse(src string) expr.Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// ---- helpers ----

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) match(kind tokenKind) bool {
	if p.peek().kind == kind {
		p.i++
		return true
	}
	return false
}

func (p *parser) need(kind tokenKind) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, errorf(t.pos, "expected %s, found %s", kind, describe(t))
	}
	p.i++
	return t, nil
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokCommand:
		return `\` + t.text
	}
	return "'" + t.text + "'"
}

// ---- grammar ----
//
//   expr    := term (('+' | '-') term)*
//   term    := unary (('*' | '/') unary | power)*      juxtaposition multiplies
//   unary   := ('-' | '+') unary | power
//   power   := 'e' '^' unary | primary ('^' unary)?     right associative
//   primary := number | x | pi | e | func | group | \frac | \sqrt

func (p *parser) parseExpr() (expr.Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, errorf(p.peek().pos, "expression nested too deeply")
	}

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(tokPlus):
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = expr.Sum(left, right)
		case p.match(tokMinus):
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = expr.Minus(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (expr.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(tokStar):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = expr.Product(left, right)
		case p.match(tokSlash):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = expr.Quo(left, right)
		case startsOperand(p.peek()):
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			left = expr.Product(left, right)
		default:
			return left, nil
		}
	}
}

func startsOperand(t token) bool {
	switch t.kind {
	case tokNumber, tokIdent, tokCommand, tokLParen, tokLBracket, tokLBrace:
		return true
	}
	return false
}

func (p *parser) parseUnary() (expr.Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, errorf(p.peek().pos, "expression nested too deeply")
	}

	switch {
	case p.match(tokMinus):
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return expr.Neg(e), nil
	case p.match(tokPlus):
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (expr.Expr, error) {
	if t := p.peek(); t.kind == tokIdent && t.text == "e" && p.peekAt(1).kind == tokCaret {
		p.i += 2
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return expr.Apply(expr.Exp, arg), nil
	}

	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.match(tokCaret) {
		return base, nil
	}
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return expr.Power(base, exp), nil
}

func (p *parser) parsePrimary() (expr.Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.advance()
		return expr.Num(t.num), nil
	case tokIdent:
		p.advance()
		return p.word(t)
	case tokLParen:
		return p.parseGroup(tokLParen, tokRParen)
	case tokLBracket:
		return p.parseGroup(tokLBracket, tokRBracket)
	case tokLBrace:
		return p.parseGroup(tokLBrace, tokRBrace)
	case tokCommand:
		p.advance()
		return p.command(t)
	}
	return nil, errorf(t.pos, "unexpected %s", describe(t))
}

// word resolves an identifier produced by the lexer's word splitting.
func (p *parser) word(t token) (expr.Expr, error) {
	switch t.text {
	case "x":
		return expr.X(), nil
	case "pi":
		return expr.Num(math.Pi), nil
	case "e":
		return expr.Num(math.E), nil
	}
	if kind, ok := expr.ParseFuncKind(t.text); ok {
		return p.parseCall(kind)
	}
	return nil, errorf(t.pos, "unknown identifier %q", t.text)
}

func (p *parser) command(t token) (expr.Expr, error) {
	switch t.text {
	case "pi":
		return expr.Num(math.Pi), nil
	case "frac", "dfrac", "tfrac":
		num, err := p.parseBraced()
		if err != nil {
			return nil, err
		}
		den, err := p.parseBraced()
		if err != nil {
			return nil, err
		}
		return expr.Quo(num, den), nil
	case "sqrt":
		return p.parseSqrt()
	case "operatorname", "mathrm":
		return p.parseNamed()
	}
	if kind, ok := expr.ParseFuncKind(t.text); ok {
		return p.parseCall(kind)
	}
	return nil, errorf(t.pos, "unsupported command %s", describe(t))
}

func (p *parser) parseGroup(open, closer tokenKind) (expr.Expr, error) {
	if _, err := p.need(open); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(closer); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseBraced() (expr.Expr, error) {
	return p.parseGroup(tokLBrace, tokRBrace)
}

// parseCall reads a function application after its name: an optional
// power (sin^2 x), then a parenthesized or bare argument.
func (p *parser) parseCall(kind expr.FuncKind) (expr.Expr, error) {
	var power expr.Expr
	if p.match(tokCaret) {
		e, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		power = e
	}
	if c, ok := power.(expr.Const); ok && c.Value == -1 {
		if inv, ok := inverses[kind]; ok {
			kind, power = inv, nil
		}
	}

	var arg expr.Expr
	var err error
	switch p.peek().kind {
	case tokLParen:
		arg, err = p.parseGroup(tokLParen, tokRParen)
	case tokLBracket:
		arg, err = p.parseGroup(tokLBracket, tokRBracket)
	case tokLBrace:
		arg, err = p.parseBraced()
	case tokEOF:
		t := p.peek()
		return nil, errorf(t.pos, "missing argument for %s", kind)
	default:
		arg, err = p.parseUnary()
	}
	if err != nil {
		return nil, err
	}

	call := expr.Apply(kind, arg)
	if power != nil {
		return expr.Power(call, power), nil
	}
	return call, nil
}

// parseExponent reads the exponent in sin^2 or \sin^{-1}: a number, a
// braced group or a signed number.
func (p *parser) parseExponent() (expr.Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.advance()
		return expr.Num(t.num), nil
	case tokLBrace:
		return p.parseBraced()
	case tokMinus:
		p.advance()
		n, err := p.need(tokNumber)
		if err != nil {
			return nil, err
		}
		return expr.Num(-n.num), nil
	}
	return nil, errorf(t.pos, "expected function power, found %s", describe(t))
}

// parseSqrt handles \sqrt{u} and \sqrt[n]{u}.
func (p *parser) parseSqrt() (expr.Expr, error) {
	var index expr.Expr
	if p.peek().kind == tokLBracket {
		n, err := p.parseGroup(tokLBracket, tokRBracket)
		if err != nil {
			return nil, err
		}
		index = n
	}

	var radicand expr.Expr
	var err error
	if p.peek().kind == tokLBrace {
		radicand, err = p.parseBraced()
	} else {
		radicand, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}

	if index == nil {
		return expr.Apply(expr.Sqrt, radicand), nil
	}
	return expr.Power(radicand, expr.Quo(expr.Num(1), index)), nil
}

// parseNamed handles \operatorname{asin} and \mathrm{e}.
func (p *parser) parseNamed() (expr.Expr, error) {
	if _, err := p.need(tokLBrace); err != nil {
		return nil, err
	}
	var name string
	start := p.peek().pos
	for p.peek().kind == tokIdent {
		name += p.advance().text
	}
	if _, err := p.need(tokRBrace); err != nil {
		return nil, err
	}

	if name == "e" {
		if p.match(tokCaret) {
			arg, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return expr.Apply(expr.Exp, arg), nil
		}
		return expr.Num(math.E), nil
	}
	kind, ok := expr.ParseFuncKind(name)
	if !ok {
		return nil, errorf(start, "unknown function %q", name)
	}
	return p.parseCall(kind)
}
