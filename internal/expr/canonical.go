package expr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON of the tree.
// This is the ONLY serialization used for fingerprints.
//
// Differences from Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Constants are encoded as shortest round-trip strings, never as JSON numbers
func MarshalCanonical(e Expr) ([]byte, error) {
	v, err := canonicalValue(e)
	if err != nil {
		return nil, err
	}
	return marshalCanonical(v)
}

// canonicalValue lowers a tree to plain maps, slices and strings.
func canonicalValue(e Expr) (any, error) {
	switch n := e.(type) {
	case Const:
		return map[string]any{"op": opConst, "value": FormatNumber(n.Value)}, nil
	case Var:
		return map[string]any{"op": opVar}, nil
	case Add:
		return canonicalNode(opAdd, n.Terms...)
	case Mul:
		return canonicalNode(opMul, n.Factors...)
	case Pow:
		return canonicalNode(opPow, n.Base, n.Exp)
	case Func:
		if !n.Kind.Valid() {
			return nil, fmt.Errorf("invalid function kind %d", int(n.Kind))
		}
		return canonicalNode(n.Kind.String(), n.Arg)
	default:
		return nil, fmt.Errorf("unsupported node type %T", e)
	}
}

func canonicalNode(op string, args ...Expr) (any, error) {
	list := make([]any, len(args))
	for i, a := range args {
		v, err := canonicalValue(a)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		list[i] = v
	}
	return map[string]any{"op": op, "args": list}, nil
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		return marshalCanonicalObject(val)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization and no HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// json.Encoder adds a trailing newline
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// compareKeysRFC8785 orders keys by UTF-16 code units.
// Go's native string comparison is UTF-8 and differs for astral runes.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
