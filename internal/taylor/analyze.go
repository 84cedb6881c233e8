package taylor

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/roach88/taylorlab/internal/diff"
	"github.com/roach88/taylorlab/internal/eval"
	"github.com/roach88/taylorlab/internal/expr"
)

// DefaultMaxOrder is the default upper bound on the polynomial order.
// Iterated derivative trees grow super-linearly with the order.
const DefaultMaxOrder = 40

// Analyzer runs analyses. It is immutable after New and safe for
// concurrent use.
type Analyzer struct {
	maxOrder int
	maxNodes int
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxOrder sets the largest accepted order.
//
// Default: 40 (DefaultMaxOrder).
func WithMaxOrder(n int) Option {
	return func(a *Analyzer) {
		a.maxOrder = n
	}
}

// WithMaxNodes sets the derivative node budget passed to diff.
//
// Default: diff.DefaultMaxNodes.
func WithMaxNodes(n int) Option {
	return func(a *Analyzer) {
		a.maxNodes = n
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxOrder: DefaultMaxOrder,
		maxNodes: diff.DefaultMaxNodes,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxOrder returns the largest accepted order.
func (a *Analyzer) MaxOrder() int {
	return a.maxOrder
}

// Analyze expands in.Expr around in.Center to in.Order and compares the
// result against f and f' at in.X.
//
// Failures:
//   - negative order: diff.ErrCodeInvalidOrder
//   - order above the limit: ErrCodeOrderLimit
//   - a node outside the grammar: diff.ErrCodeUnsupported
//   - f or a derivative undefined at the center: *eval.DomainError, wrapped
//   - P_n(x) or P_n'(x) not finite: ErrCodeNonFinite
//
// f(x) and f'(x) failing is not an error; the fields stay nil.
func (a *Analyzer) Analyze(in Input) (*Result, error) {
	if in.Order > a.maxOrder {
		return nil, &Error{
			Code:    ErrCodeOrderLimit,
			Message: fmt.Sprintf("order %d exceeds limit %d", in.Order, a.maxOrder),
		}
	}

	log := a.logger.With("center", in.Center, "x", in.X, "order", in.Order)
	log.Debug("analysis started")

	derivs, err := diff.Sequence(in.Expr, in.Order, diff.WithMaxNodes(a.maxNodes))
	if err != nil {
		return nil, err
	}
	fingerprint, err := expr.Fingerprint(in.Expr)
	if err != nil {
		return nil, fmt.Errorf("fingerprint expression: %w", err)
	}

	res := &Result{
		Source:          in.Source,
		Expression:      expr.String(in.Expr),
		ExpressionLaTeX: expr.LaTeX(in.Expr),
		Fingerprint:     fingerprint,
		Center:          in.Center,
		X:               in.X,
		Order:           in.Order,
	}
	tr := &trace{}

	if in.Source != "" {
		tr.add(StageParse, "parsed %q as %s", in.Source, res.Expression)
	} else {
		tr.add(StageParse, "expression %s", res.Expression)
	}

	// Coefficients
	coefs, values, err := coefficientsOf(derivs, in.Center)
	if err != nil {
		return nil, err
	}
	res.Coefficients = coefs
	tr.add(StageCoefficients, "c_k = f^(k)(a)/k! at a=%s", num(in.Center))
	for k, d := range derivs {
		tr.add(StageCoefficients, "k=%d: f^(%d)(x) = %s, f^(%d)(a) = %s, c_%d = %s",
			k, k, expr.String(d), k, num(values[k]), k, num(coefs[k]))
	}
	log.Debug("coefficients built", "nodes", expr.NodeCount(derivs[len(derivs)-1]))

	// Polynomial
	poly := PolynomialExpr(coefs, in.Center)
	res.Polynomial = expr.String(poly)
	res.PolynomialLaTeX = expr.LaTeX(poly)
	tr.add(StagePolynomial, "P_%d(x) = %s", in.Order, res.Polynomial)

	// Evaluation
	approx, partials := EvaluateWithPartials(coefs, in.Center, in.X)
	if math.IsNaN(approx) || math.IsInf(approx, 0) {
		return nil, &Error{Code: ErrCodeNonFinite, Message: fmt.Sprintf("P_%d(%g) is not finite", in.Order, in.X)}
	}
	res.ApproxValue = approx
	tr.add(StageEvaluation, "P_%d(%s) = %s", in.Order, num(in.X), num(approx))

	// Exact value
	if v, err := eval.Evaluate(in.Expr, in.X); err != nil {
		tr.unavailable(log, StageExactValue, &ReferenceError{Quantity: "f(x)", X: in.X, Err: err})
	} else {
		res.ExactValue = &v
		tr.add(StageExactValue, "f(%s) = %s", num(in.X), num(v))
	}

	// Derivative
	res.DerivativeApprox = DerivativeOfPolynomial(coefs, in.Center, in.X)
	if math.IsNaN(res.DerivativeApprox) || math.IsInf(res.DerivativeApprox, 0) {
		return nil, &Error{Code: ErrCodeNonFinite, Message: fmt.Sprintf("P_%d'(%g) is not finite", in.Order, in.X)}
	}
	tr.add(StageDerivative, "P_%d'(%s) = %s", in.Order, num(in.X), num(res.DerivativeApprox))
	a.exactDerivative(log, in, derivs, res, tr)
	res.DerivativeNumeric = numericDerivative(in.Expr, in.X)
	if res.DerivativeNumeric != nil {
		tr.add(StageDerivative, "central difference f'(%s) ~ %s", num(in.X), num(*res.DerivativeNumeric))
	}

	// Errors
	res.DerivativeErrors = DampedMetrics(res.DerivativeApprox, res.DerivativeExact)
	res.ValueErrors = DampedMetrics(res.ApproxValue, res.ExactValue)
	tr.addMetrics("derivative", res.DerivativeErrors)
	tr.addMetrics("value", res.ValueErrors)

	// Convergence
	res.Convergence = BuildConvergenceTable(partials, res.ExactValue)
	tr.add(StageConvergence, "convergence table for P_0..P_%d at x=%s (%d rows)", in.Order, num(in.X), len(res.Convergence))

	// Plot
	if in.Plot != nil {
		series, err := Sample(in.Expr, coefs, in.Center, *in.Plot)
		if err != nil {
			return nil, err
		}
		res.Plot = series
		tr.add(StagePlot, "sampled %d points on [%s, %s]", len(series.X), num(series.Min), num(series.Max))
	}

	res.Steps = tr.steps
	log.Debug("analysis complete", "approx", res.ApproxValue, "steps", len(res.Steps))
	return res, nil
}

// exactDerivative fills DerivativeExact, reusing the first derivative from
// the coefficient pass when it exists.
func (a *Analyzer) exactDerivative(log *slog.Logger, in Input, derivs []expr.Expr, res *Result, tr *trace) {
	var d1 expr.Expr
	if len(derivs) > 1 {
		d1 = derivs[1]
	} else {
		d, err := diff.K(in.Expr, 1, diff.WithMaxNodes(a.maxNodes))
		if err != nil {
			tr.unavailable(log, StageDerivative, &ReferenceError{Quantity: "f'(x)", X: in.X, Err: err})
			return
		}
		d1 = d
	}

	v, err := eval.Evaluate(d1, in.X)
	if err != nil {
		tr.add(StageDerivative, "f'(x) = %s", expr.String(d1))
		tr.unavailable(log, StageDerivative, &ReferenceError{Quantity: "f'(x)", X: in.X, Err: err})
		return
	}
	res.DerivativeExact = &v
	tr.add(StageDerivative, "f'(x) = %s, f'(%s) = %s", expr.String(d1), num(in.X), num(v))
}

// numericDerivative is a central finite difference of f at x, or nil when
// f is undefined near x.
func numericDerivative(e expr.Expr, x float64) *float64 {
	v := fd.Derivative(eval.Func(e), x, &fd.Settings{Formula: fd.Central})
	return finitePtr(v)
}

// trace accumulates the ordered step list.
type trace struct {
	steps []Step
}

func (t *trace) add(stage Stage, format string, args ...any) {
	t.steps = append(t.steps, Step{Stage: stage, Text: fmt.Sprintf(format, args...)})
}

// unavailable logs a recovered reference failure and records it as a step.
func (t *trace) unavailable(log *slog.Logger, stage Stage, re *ReferenceError) {
	log.Debug("reference value unavailable", "quantity", re.Quantity, "error", re.Err)
	t.add(stage, "%v", re)
}

func (t *trace) addMetrics(what string, m ErrorMetrics) {
	if m.Absolute == nil {
		t.add(StageErrors, "%s errors: no exact reference", what)
		return
	}
	t.add(StageErrors, "%s errors: absolute = %s, relative = %s", what, num(*m.Absolute), num(*m.Relative))
}

func num(v float64) string {
	return expr.FormatNumber(v)
}
