package taylor

import (
	"github.com/roach88/taylorlab/internal/expr"
)

// Coefficients holds c[0..n], indexed by derivative order.
type Coefficients []float64

// Input is one analysis request.
type Input struct {
	// Expr is the function to expand.
	Expr expr.Expr

	// Source is the text the tree was parsed from, echoed in the result.
	// Optional.
	Source string

	// Center is the expansion point a.
	Center float64

	// X is the evaluation point.
	X float64

	// Order is the polynomial degree n (>= 0).
	Order int

	// Plot requests sampled series when non-nil.
	Plot *PlotRange
}

// PlotRange selects the sampling grid for Sample.
// Zero Min and Max select the default window around the center.
type PlotRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	NumPoints int     `json:"num_points"`
}

// Series is f and P_n sampled on a uniform grid.
// F[i] or P[i] is nil where the value is undefined or not finite.
type Series struct {
	Min float64    `json:"min"`
	Max float64    `json:"max"`
	X   []float64  `json:"x"`
	F   []*float64 `json:"f"`
	P   []*float64 `json:"p"`
}

// ConvergenceRow compares the partial sum P_k(x) against f(x).
//
// All error fields are nil when Exact is nil. RelError and RelErrorPct are
// also nil when Exact is zero.
type ConvergenceRow struct {
	Order       int      `json:"order"`
	Approx      float64  `json:"approx"`
	Exact       *float64 `json:"exact"`
	AbsError    *float64 `json:"abs_error"`
	RelError    *float64 `json:"rel_error"`
	RelErrorPct *float64 `json:"rel_error_pct"`
}

// ErrorMetrics holds the absolute and damped relative error of one
// approximation. Both are nil when no reference value exists.
type ErrorMetrics struct {
	Absolute *float64 `json:"absolute"`
	Relative *float64 `json:"relative"`
}

// Stage names one step of the analysis trace.
type Stage string

const (
	StageParse        Stage = "parse"
	StageCoefficients Stage = "coefficients"
	StagePolynomial   Stage = "polynomial"
	StageEvaluation   Stage = "evaluation"
	StageExactValue   Stage = "exact_value"
	StageDerivative   Stage = "derivative"
	StageErrors       Stage = "errors"
	StageConvergence  Stage = "convergence"
	StagePlot         Stage = "plot"
)

// Step is one human-readable line of the analysis trace.
// Only the stage order is stable; the wording is not.
type Step struct {
	Stage Stage  `json:"stage"`
	Text  string `json:"text"`
}

// Result is the outcome of one analysis. It is never mutated after Analyze
// returns.
type Result struct {
	Source          string  `json:"source,omitempty"`
	Expression      string  `json:"expression"`
	ExpressionLaTeX string  `json:"expression_latex"`
	Fingerprint     string  `json:"fingerprint"`
	Center          float64 `json:"center"`
	X               float64 `json:"x"`
	Order           int     `json:"order"`

	Coefficients    Coefficients `json:"coefficients"`
	Polynomial      string       `json:"polynomial"`
	PolynomialLaTeX string       `json:"polynomial_latex"`

	ApproxValue float64  `json:"approx_value"`
	ExactValue  *float64 `json:"exact_value"`

	DerivativeApprox  float64  `json:"derivative_approx"`
	DerivativeExact   *float64 `json:"derivative_exact"`
	DerivativeNumeric *float64 `json:"derivative_numeric"`

	ValueErrors      ErrorMetrics `json:"value_errors"`
	DerivativeErrors ErrorMetrics `json:"derivative_errors"`

	Convergence []ConvergenceRow `json:"convergence"`
	Plot        *Series          `json:"plot,omitempty"`
	Steps       []Step           `json:"steps"`
}
