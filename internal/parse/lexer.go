package parse

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/taylorlab/internal/expr"
)

// tokenKind represents the kind of token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent   // alphabetic run: x, pi, e, sin, ...
	tokCommand // LaTeX command without the backslash: frac, sin, pi, ...
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
)

var kindNames = map[tokenKind]string{
	tokEOF:      "end of input",
	tokNumber:   "number",
	tokIdent:    "identifier",
	tokCommand:  "command",
	tokPlus:     "'+'",
	tokMinus:    "'-'",
	tokStar:     "'*'",
	tokSlash:    "'/'",
	tokCaret:    "'^'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBrace:   "'{'",
	tokRBrace:   "'}'",
	tokLBracket: "'['",
	tokRBracket: "']'",
}

func (k tokenKind) String() string {
	return kindNames[k]
}

// token is a lexical token. Pos is the rune offset in the normalized input.
type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// runeReplacer maps common typeset symbols onto their ASCII spelling.
var runeReplacer = strings.NewReplacer(
	"π", "pi",
	"·", "*",
	"×", "*",
	"⋅", "*",
	"÷", "/",
	"−", "-",
	"√", `\sqrt `,
)

// normalize applies NFC and rewrites typeset symbols.
func normalize(src string) string {
	return runeReplacer.Replace(norm.NFC.String(src))
}

// ignoredCommands produce no token. \left( and \right) reduce to plain
// parentheses; the spacing commands vanish.
var ignoredCommands = map[string]bool{
	"left":  true,
	"right": true,
	",":     true,
	";":     true,
	":":     true,
	"!":     true,
	" ":     true,
	"quad":  true,
}

// operatorCommands spell binary operators.
var operatorCommands = map[string]tokenKind{
	"cdot":  tokStar,
	"times": tokStar,
	"div":   tokSlash,
}

type lexer struct {
	src []rune
	cur int
}

// scan splits normalized input into tokens, ending with tokEOF.
func scan(src string) ([]token, error) {
	l := &lexer{src: []rune(src)}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokIdent {
			words, err := splitWords(tok)
			if err != nil {
				return nil, err
			}
			toks = append(toks, words...)
			continue
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

// words are the identifiers an alphabetic run may be built from.
var words = func() []string {
	w := []string{"x", "e", "pi", "ln", "arcsin", "arccos", "arctan"}
	for _, k := range expr.FuncKinds() {
		w = append(w, k.String())
	}
	return w
}()

// splitWords breaks a letter run such as "xsin" or "pix" into words,
// taking the longest match at each offset so "exp" wins over "e".
func splitWords(run token) ([]token, error) {
	var out []token
	rest := run.text
	pos := run.pos
	for rest != "" {
		best := ""
		for _, w := range words {
			if len(w) > len(best) && strings.HasPrefix(rest, w) {
				best = w
			}
		}
		if best == "" {
			return nil, errorf(pos, "unknown identifier %q", run.text)
		}
		out = append(out, token{kind: tokIdent, text: best, pos: pos})
		rest = rest[len(best):]
		pos += len(best)
	}
	return out, nil
}

func (l *lexer) peek(n int) rune {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *lexer) next() (token, error) {
	for {
		for l.cur < len(l.src) && unicode.IsSpace(l.src[l.cur]) {
			l.cur++
		}
		if l.cur >= len(l.src) {
			return token{kind: tokEOF, pos: l.cur}, nil
		}

		start := l.cur
		r := l.src[l.cur]
		switch {
		case isDigit(r) || (r == '.' && isDigit(l.peek(1))):
			return l.scanNumber()
		case isLetter(r):
			for l.cur < len(l.src) && isLetter(l.src[l.cur]) {
				l.cur++
			}
			return token{kind: tokIdent, text: string(l.src[start:l.cur]), pos: start}, nil
		case r == '\\':
			name := l.scanCommand()
			if name == "" {
				return token{}, errorf(start, "expected command name after '\\'")
			}
			if ignoredCommands[name] {
				continue
			}
			if kind, ok := operatorCommands[name]; ok {
				return token{kind: kind, text: `\` + name, pos: start}, nil
			}
			return token{kind: tokCommand, text: name, pos: start}, nil
		case r == '*' && l.peek(1) == '*':
			l.cur += 2
			return token{kind: tokCaret, text: "**", pos: start}, nil
		}

		kind, ok := punctuation[r]
		if !ok {
			return token{}, errorf(start, "unexpected character %q", r)
		}
		l.cur++
		return token{kind: kind, text: string(r), pos: start}, nil
	}
}

var punctuation = map[rune]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokCaret,
	'(': tokLParen,
	')': tokRParen,
	'{': tokLBrace,
	'}': tokRBrace,
	'[': tokLBracket,
	']': tokRBracket,
}

// scanNumber reads digits with an optional fraction and an optional
// exponent. The exponent is taken only when 'e' is followed by a digit
// (or a sign and a digit), so "2e" still reads as 2 times e.
func (l *lexer) scanNumber() (token, error) {
	start := l.cur
	for l.cur < len(l.src) && isDigit(l.src[l.cur]) {
		l.cur++
	}
	if l.peek(0) == '.' {
		l.cur++
		for l.cur < len(l.src) && isDigit(l.src[l.cur]) {
			l.cur++
		}
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		switch {
		case isDigit(l.peek(1)):
			l.cur += 2
		case (l.peek(1) == '+' || l.peek(1) == '-') && isDigit(l.peek(2)):
			l.cur += 3
		}
		for l.cur < len(l.src) && isDigit(l.src[l.cur]) {
			l.cur++
		}
	}
	text := string(l.src[start:l.cur])
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, errorf(start, "invalid number %q", text)
	}
	return token{kind: tokNumber, text: text, num: v, pos: start}, nil
}

// scanCommand reads a LaTeX command after the backslash: a letter run, or a
// single non-letter such as \, or \;.
func (l *lexer) scanCommand() string {
	l.cur++ // backslash
	start := l.cur
	for l.cur < len(l.src) && isLetter(l.src[l.cur]) {
		l.cur++
	}
	if l.cur > start {
		return string(l.src[start:l.cur])
	}
	if l.cur < len(l.src) {
		l.cur++
		return string(l.src[start:l.cur])
	}
	return ""
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
