package expr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire op names. Functions use their FuncKind name ("sin", "log", ...).
const (
	opConst = "const"
	opVar   = "var"
	opAdd   = "add"
	opMul   = "mul"
	opPow   = "pow"
)

// wireNode is the tagged JSON form of a tree node:
//
//	{"op":"pow","args":[{"op":"var"},{"op":"const","value":2}]}
type wireNode struct {
	Op    string     `json:"op"`
	Value *float64   `json:"value,omitempty"`
	Args  []wireNode `json:"args,omitempty"`
}

// Marshal encodes a tree as tagged JSON.
// NOTE: This is NOT canonical. Use MarshalCanonical for fingerprints.
func Marshal(e Expr) ([]byte, error) {
	w, err := toWire(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes tagged JSON into a tree.
// Unknown fields, unknown ops and wrong arities are rejected. The tree is
// returned as written, without simplification.
func Unmarshal(data []byte) (Expr, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w wireNode
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	return fromWire(w, "$")
}

func toWire(e Expr) (wireNode, error) {
	switch n := e.(type) {
	case Const:
		v := n.Value
		return wireNode{Op: opConst, Value: &v}, nil
	case Var:
		return wireNode{Op: opVar}, nil
	case Add:
		return wireList(opAdd, n.Terms)
	case Mul:
		return wireList(opMul, n.Factors)
	case Pow:
		return wireList(opPow, []Expr{n.Base, n.Exp})
	case Func:
		if !n.Kind.Valid() {
			return wireNode{}, fmt.Errorf("invalid function kind %d", int(n.Kind))
		}
		return wireList(n.Kind.String(), []Expr{n.Arg})
	default:
		return wireNode{}, fmt.Errorf("unsupported node type %T", e)
	}
}

func wireList(op string, args []Expr) (wireNode, error) {
	w := wireNode{Op: op, Args: make([]wireNode, len(args))}
	for i, a := range args {
		child, err := toWire(a)
		if err != nil {
			return wireNode{}, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		w.Args[i] = child
	}
	return w, nil
}

func fromWire(w wireNode, path string) (Expr, error) {
	switch w.Op {
	case opConst:
		if w.Value == nil {
			return nil, fmt.Errorf("%s: const requires value", path)
		}
		if len(w.Args) != 0 {
			return nil, fmt.Errorf("%s: const takes no args", path)
		}
		return Const{Value: *w.Value}, nil
	case opVar:
		if len(w.Args) != 0 || w.Value != nil {
			return nil, fmt.Errorf("%s: var takes no args or value", path)
		}
		return Var{}, nil
	}

	args, err := fromWireArgs(w, path)
	if err != nil {
		return nil, err
	}
	switch w.Op {
	case opAdd:
		return Add{Terms: args}, nil
	case opMul:
		return Mul{Factors: args}, nil
	case opPow:
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: pow requires 2 args, got %d", path, len(args))
		}
		return Pow{Base: args[0], Exp: args[1]}, nil
	}

	kind, ok := ParseFuncKind(w.Op)
	if !ok {
		return nil, fmt.Errorf("%s: unknown op %q", path, w.Op)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: %s requires 1 arg, got %d", path, w.Op, len(args))
	}
	return Func{Kind: kind, Arg: args[0]}, nil
}

func fromWireArgs(w wireNode, path string) ([]Expr, error) {
	if w.Value != nil {
		return nil, fmt.Errorf("%s: %s takes no value", path, w.Op)
	}
	args := make([]Expr, len(w.Args))
	for i, child := range w.Args {
		e, err := fromWire(child, fmt.Sprintf("%s.args[%d]", path, i))
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	return args, nil
}
