package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_EmptyIsZero(t *testing.T) {
	assert.Equal(t, Const{Value: 0}, Sum())
}

func TestProduct_EmptyIsOne(t *testing.T) {
	assert.Equal(t, Const{Value: 1}, Product())
}

func TestSum_FoldsConstantsLast(t *testing.T) {
	got := Sum(Num(1), X(), Num(2))
	require.Equal(t, Add{Terms: []Expr{Var{}, Const{Value: 3}}}, got)
	assert.Equal(t, "x + 3", String(got))
}

func TestSum_CollectsLikeTerms(t *testing.T) {
	cos := Apply(Cos, X())
	got := Sum(cos, Product(Num(2), cos))
	assert.Equal(t, Mul{Factors: []Expr{Const{Value: 3}, cos}}, got)
}

func TestSum_CancellationYieldsZero(t *testing.T) {
	assert.Equal(t, Const{Value: 0}, Sum(X(), Neg(X())))
}

func TestSum_FlattensNested(t *testing.T) {
	inner := Add{Terms: []Expr{Var{}, Const{Value: 1}}}
	got := Sum(inner, Add{Terms: []Expr{Apply(Sin, X())}})
	assert.Equal(t, "x + sin(x) + 1", String(got))
}

func TestProduct_MergesBases(t *testing.T) {
	got := Product(X(), X(), Power(X(), Num(2)))
	assert.Equal(t, Pow{Base: Var{}, Exp: Const{Value: 4}}, got)
}

func TestProduct_InverseCancels(t *testing.T) {
	assert.Equal(t, Const{Value: 1}, Product(X(), Power(X(), Num(-1))))
}

func TestProduct_ZeroAnnihilates(t *testing.T) {
	assert.Equal(t, Const{Value: 0}, Product(Num(0), Apply(Log, X())))
}

func TestProduct_ConstantLeads(t *testing.T) {
	got := Product(Apply(Sin, X()), Num(3), Num(2))
	assert.Equal(t, Mul{Factors: []Expr{Const{Value: 6}, Func{Kind: Sin, Arg: Var{}}}}, got)
}

func TestPower_Identities(t *testing.T) {
	tests := []struct {
		name string
		got  Expr
		want Expr
	}{
		{"zero exponent", Power(X(), Num(0)), Const{Value: 1}},
		{"unit exponent", Power(X(), Num(1)), Var{}},
		{"constant fold", Power(Num(2), Num(3)), Const{Value: 8}},
		{"non-real fold skipped", Power(Num(-8), Num(0.5)), Pow{Base: Const{Value: -8}, Exp: Const{Value: 0.5}}},
		{"division by zero not folded", Power(Num(0), Num(-1)), Pow{Base: Const{Value: 0}, Exp: Const{Value: -1}}},
		{"nested integer powers", Power(Power(X(), Num(2)), Num(3)), Pow{Base: Var{}, Exp: Const{Value: 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestPower_DistributesOverProduct(t *testing.T) {
	got := Power(Product(Num(2), X()), Num(2))
	assert.Equal(t, "4*x^2", String(got))
}

func TestApply_FoldsInsideDomain(t *testing.T) {
	assert.Equal(t, Const{Value: 0}, Apply(Sin, Num(0)))
	assert.Equal(t, Const{Value: 1}, Apply(Exp, Num(0)))
}

func TestApply_KeepsOutsideDomain(t *testing.T) {
	assert.Equal(t, Func{Kind: Log, Arg: Const{Value: -1}}, Apply(Log, Num(-1)))
	assert.Equal(t, Func{Kind: Asin, Arg: Const{Value: 2}}, Apply(Asin, Num(2)))
}

func TestQuo(t *testing.T) {
	assert.Equal(t, "0.5*x", String(Quo(X(), Num(2))))
	assert.Equal(t, "1/x", String(Quo(Num(1), X())))
}

func TestMinus(t *testing.T) {
	assert.Equal(t, "x - 1", String(Minus(X(), Num(1))))
}

func TestFuncKind_Apply(t *testing.T) {
	assert.InDelta(t, math.Sinh(0.3), Sinh.Apply(0.3), 1e-15)
	assert.True(t, math.IsNaN(Log.Apply(0)))
	assert.True(t, math.IsNaN(Sqrt.Apply(-1)))
	assert.True(t, math.IsNaN(FuncKind(99).Apply(1)))
}

func TestParseFuncKind(t *testing.T) {
	for _, k := range FuncKinds() {
		got, ok := ParseFuncKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}

	got, ok := ParseFuncKind("ln")
	require.True(t, ok)
	assert.Equal(t, Log, got)

	_, ok = ParseFuncKind("sec")
	assert.False(t, ok)
}

func TestDependsOnVar(t *testing.T) {
	assert.True(t, DependsOnVar(Apply(Sin, X())))
	assert.False(t, DependsOnVar(Pow{Base: Const{Value: 2}, Exp: Func{Kind: Log, Arg: Const{Value: 3}}}))
	assert.False(t, DependsOnVar(Add{}))
	assert.True(t, DependsOnVar(Mul{Factors: []Expr{Const{Value: 2}, Pow{Base: Const{Value: 2}, Exp: Var{}}}}))
}

func TestNodeCount(t *testing.T) {
	assert.Equal(t, 1, NodeCount(X()))
	// add(pow(x, 2), mul(2, x))
	assert.Equal(t, 7, NodeCount(Sum(Power(X(), Num(2)), Product(Num(2), X()))))
}

func TestEqual(t *testing.T) {
	a := Sum(Apply(Sin, X()), Num(1))
	b := Sum(Apply(Sin, X()), Num(1))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, Sum(Apply(Cos, X()), Num(1))))
	assert.False(t, Equal(Const{Value: math.NaN()}, Const{Value: math.NaN()}))
}
