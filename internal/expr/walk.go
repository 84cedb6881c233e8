package expr

// DependsOnVar reports whether the free variable occurs anywhere in e.
func DependsOnVar(e Expr) bool {
	switch n := e.(type) {
	case Var:
		return true
	case Const:
		return false
	case Add:
		for _, t := range n.Terms {
			if DependsOnVar(t) {
				return true
			}
		}
		return false
	case Mul:
		for _, f := range n.Factors {
			if DependsOnVar(f) {
				return true
			}
		}
		return false
	case Pow:
		return DependsOnVar(n.Base) || DependsOnVar(n.Exp)
	case Func:
		return DependsOnVar(n.Arg)
	default:
		return false
	}
}

// NodeCount returns the number of nodes in e, counting shared subtrees
// once per reference.
func NodeCount(e Expr) int {
	switch n := e.(type) {
	case Add:
		count := 1
		for _, t := range n.Terms {
			count += NodeCount(t)
		}
		return count
	case Mul:
		count := 1
		for _, f := range n.Factors {
			count += NodeCount(f)
		}
		return count
	case Pow:
		return 1 + NodeCount(n.Base) + NodeCount(n.Exp)
	case Func:
		return 1 + NodeCount(n.Arg)
	case nil:
		return 0
	default:
		return 1
	}
}

// Equal reports structural equality. Constants compare by value, so
// Const{NaN} is never equal to itself.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Const:
		y, ok := b.(Const)
		return ok && x.Value == y.Value
	case Var:
		_, ok := b.(Var)
		return ok
	case Add:
		y, ok := b.(Add)
		return ok && equalSlices(x.Terms, y.Terms)
	case Mul:
		y, ok := b.(Mul)
		return ok && equalSlices(x.Factors, y.Factors)
	case Pow:
		y, ok := b.(Pow)
		return ok && Equal(x.Base, y.Base) && Equal(x.Exp, y.Exp)
	case Func:
		y, ok := b.(Func)
		return ok && x.Kind == y.Kind && Equal(x.Arg, y.Arg)
	default:
		return a == nil && b == nil
	}
}

func equalSlices(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
