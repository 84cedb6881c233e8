package expr

import "fmt"

// Expr is a sealed interface representing a node of the expression tree.
// Only Const, Var, Add, Mul, Pow and Func implement this.
type Expr interface {
	exprNode() // Sealed - only these types implement it
}

// Const is a floating-point literal.
type Const struct {
	Value float64
}

func (Const) exprNode() {}

// Var is the single free variable.
// It carries no name: the grammar is single-variable, so the tag alone
// identifies it.
type Var struct{}

func (Var) exprNode() {}

// Add is the sum of its terms. An empty Add evaluates to 0.
type Add struct {
	Terms []Expr
}

func (Add) exprNode() {}

// Mul is the product of its factors. An empty Mul evaluates to 1.
type Mul struct {
	Factors []Expr
}

func (Mul) exprNode() {}

// Pow raises Base to Exp.
type Pow struct {
	Base Expr
	Exp  Expr
}

func (Pow) exprNode() {}

// Func applies an elementary function to Arg.
type Func struct {
	Kind FuncKind
	Arg  Expr
}

func (Func) exprNode() {}

// FuncKind enumerates the supported elementary functions.
type FuncKind int

const (
	Sin FuncKind = iota
	Cos
	Tan
	Exp
	Log
	Sqrt
	Asin
	Acos
	Atan
	Sinh
	Cosh
	Tanh
)

var funcNames = [...]string{
	Sin:  "sin",
	Cos:  "cos",
	Tan:  "tan",
	Exp:  "exp",
	Log:  "log",
	Sqrt: "sqrt",
	Asin: "asin",
	Acos: "acos",
	Atan: "atan",
	Sinh: "sinh",
	Cosh: "cosh",
	Tanh: "tanh",
}

// FuncKinds lists every supported kind in declaration order.
func FuncKinds() []FuncKind {
	kinds := make([]FuncKind, len(funcNames))
	for i := range funcNames {
		kinds[i] = FuncKind(i)
	}
	return kinds
}

// Valid reports whether k is one of the declared kinds.
func (k FuncKind) Valid() bool {
	return k >= Sin && int(k) < len(funcNames)
}

// String returns the lowercase function name (e.g. "asin").
func (k FuncKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("FuncKind(%d)", int(k))
	}
	return funcNames[k]
}

// ParseFuncKind resolves a function name, accepting the common aliases
// "ln" and "arcsin"/"arccos"/"arctan".
func ParseFuncKind(name string) (FuncKind, bool) {
	switch name {
	case "ln":
		return Log, true
	case "arcsin":
		return Asin, true
	case "arccos":
		return Acos, true
	case "arctan":
		return Atan, true
	}
	for i, n := range funcNames {
		if n == name {
			return FuncKind(i), true
		}
	}
	return 0, false
}
