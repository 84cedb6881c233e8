package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/parse"
	"github.com/roach88/taylorlab/internal/store"
	"github.com/roach88/taylorlab/internal/taylor"
	"github.com/roach88/taylorlab/internal/testutil"
)

// Run executes a single scenario and returns the result.
//
// The expression is parsed and analyzed with the scenario's limits. A
// failure is compared against expect.error. A success is checked against
// the expectations and assertions, then written to a fresh in-memory
// store and read back.
//
// The returned error covers harness failures only (the store could not be
// opened, a write failed). Scenario mismatches are reported in
// Result.Errors with Pass set to false.
func Run(scenario *Scenario) (*Result, error) {
	return run(context.Background(), scenario)
}

func run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult(scenario.Name)

	e, err := parse.Parse(scenario.Expression)
	if err != nil {
		checkFailure(result, scenario, parse.Code, err)
		return result, nil
	}

	opts := []taylor.Option{
		// Suppress logs in scenario runs
		taylor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if scenario.MaxOrder > 0 {
		opts = append(opts, taylor.WithMaxOrder(scenario.MaxOrder))
	}
	if scenario.MaxNodes > 0 {
		opts = append(opts, taylor.WithMaxNodes(scenario.MaxNodes))
	}

	res, err := taylor.New(opts...).Analyze(taylor.Input{
		Expr:   e,
		Source: scenario.Expression,
		Center: scenario.Center,
		X:      scenario.X,
		Order:  scenario.Order,
	})
	if err != nil {
		checkFailure(result, scenario, taylor.CodeOf(err), err)
		return result, nil
	}
	result.Analysis = res

	if scenario.Expect.Error != "" {
		result.AddError("expected error %s, analysis succeeded", scenario.Expect.Error)
		return result, nil
	}

	checkExpect(result, scenario, res)
	for _, msg := range EvaluateAssertions(res, scenario.Assertions, scenario.tolerance()) {
		result.AddError(msg)
	}

	if err := roundTrip(ctx, result, e, res); err != nil {
		return nil, err
	}
	return result, nil
}

// checkFailure records an analysis failure against expect.error.
func checkFailure(result *Result, scenario *Scenario, code string, err error) {
	result.ErrorCode = code
	switch {
	case scenario.Expect.Error == "":
		result.AddError("unexpected error: %v", err)
	case code != scenario.Expect.Error:
		result.AddError("expected error %s, got %s: %v", scenario.Expect.Error, code, err)
	}
}

// checkExpect compares the direct expectations against res.
func checkExpect(result *Result, scenario *Scenario, res *taylor.Result) {
	want := scenario.Expect
	tol := scenario.tolerance()

	if want.Coefficients != nil {
		if len(want.Coefficients) != len(res.Coefficients) {
			result.AddError("coefficients: expected %d, got %d", len(want.Coefficients), len(res.Coefficients))
		} else {
			for k, c := range want.Coefficients {
				if !approxEqual(res.Coefficients[k], c, tol) {
					result.AddError("coefficient c_%d: expected %s, got %s",
						k, expr.FormatNumber(c), expr.FormatNumber(res.Coefficients[k]))
				}
			}
		}
	}

	if want.ApproxValue != nil && !approxEqual(res.ApproxValue, *want.ApproxValue, tol) {
		result.AddError("approx_value: expected %s, got %s",
			expr.FormatNumber(*want.ApproxValue), expr.FormatNumber(res.ApproxValue))
	}

	if want.ExactDefined != nil && *want.ExactDefined != (res.ExactValue != nil) {
		result.AddError("exact_defined: expected %t, got %t", *want.ExactDefined, res.ExactValue != nil)
	}

	if want.DerivativeDefined != nil && *want.DerivativeDefined != (res.DerivativeExact != nil) {
		result.AddError("derivative_defined: expected %t, got %t", *want.DerivativeDefined, res.DerivativeExact != nil)
	}

	if want.Polynomial != "" && want.Polynomial != res.Polynomial {
		result.AddError("polynomial: expected %q, got %q", want.Polynomial, res.Polynomial)
	}
}

// roundTrip stores res in a fresh in-memory store and checks that the
// stored run reads back intact.
func roundTrip(ctx context.Context, result *Result, e expr.Expr, res *taylor.Result) error {
	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequenceIDGenerator("run")),
		store.WithClock(testutil.NewDeterministicClock()),
	)
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	summary, err := st.WriteRun(ctx, e, res)
	if err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}
	result.RunID = summary.ID

	stored, err := st.ReadRun(ctx, summary.ID)
	if err != nil {
		return fmt.Errorf("failed to read run %s: %w", summary.ID, err)
	}

	if !expr.Equal(stored.Tree, e) {
		result.AddError("stored tree %s differs from %s", expr.String(stored.Tree), expr.String(e))
	}
	if stored.Fingerprint != res.Fingerprint {
		result.AddError("stored fingerprint %s differs from %s", stored.Fingerprint, res.Fingerprint)
	}
	if stored.Result == nil {
		result.AddError("stored run has no result")
		return nil
	}
	if stored.Result.ApproxValue != res.ApproxValue {
		result.AddError("stored approx_value %s differs from %s",
			expr.FormatNumber(stored.Result.ApproxValue), expr.FormatNumber(res.ApproxValue))
	}
	if len(stored.Result.Coefficients) != len(res.Coefficients) {
		result.AddError("stored run has %d coefficients, expected %d", len(stored.Result.Coefficients), len(res.Coefficients))
	}
	return nil
}

// RunAll executes scenarios concurrently, at most limit at a time
// (limit <= 0 means no limit). Results are in scenario order.
func RunAll(ctx context.Context, scenarios []*Scenario, limit int) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := run(ctx, s)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", s.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// approxEqual reports |got - want| <= tol * max(1, |want|).
func approxEqual(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol*math.Max(1, math.Abs(want))
}
