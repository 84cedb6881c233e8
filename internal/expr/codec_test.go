package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Shape(t *testing.T) {
	data, err := Marshal(Pow{Base: Var{}, Exp: Const{Value: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"pow","args":[{"op":"var"},{"op":"const","value":2}]}`, string(data))
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	// Raw, unsimplified tree: decoding must not rewrite it.
	tree := Add{Terms: []Expr{
		Mul{Factors: []Expr{Const{Value: 1}, Func{Kind: Sin, Arg: Var{}}}},
		Pow{Base: Var{}, Exp: Const{Value: 0}},
		Func{Kind: Atan, Arg: Add{Terms: []Expr{}}},
	}}

	data, err := Marshal(tree)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, Expr(tree), got)
}

func TestUnmarshal_AcceptsAliases(t *testing.T) {
	got, err := Unmarshal([]byte(`{"op":"ln","args":[{"op":"var"}]}`))
	require.NoError(t, err)
	assert.Equal(t, Func{Kind: Log, Arg: Var{}}, got)
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"unknown op", `{"op":"sec","args":[{"op":"var"}]}`, `unknown op "sec"`},
		{"pow arity", `{"op":"pow","args":[{"op":"var"}]}`, "pow requires 2 args"},
		{"func arity", `{"op":"sin","args":[]}`, "sin requires 1 arg"},
		{"const without value", `{"op":"const"}`, "const requires value"},
		{"var with args", `{"op":"var","args":[{"op":"var"}]}`, "var takes no args"},
		{"value on add", `{"op":"add","value":1}`, "add takes no value"},
		{"nested path", `{"op":"add","args":[{"op":"var"},{"op":"cot","args":[{"op":"var"}]}]}`, "$.args[1]"},
		{"unknown field", `{"op":"var","name":"y"}`, "unknown field"},
		{"malformed", `{"op":`, "decode expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMarshal_RejectsNil(t *testing.T) {
	_, err := Marshal(Add{Terms: []Expr{nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported node type")
}
