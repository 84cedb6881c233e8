package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/taylor"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// assertCoefficient checks c_k against the expected value.
func assertCoefficient(res *taylor.Result, a Assertion, tol float64) error {
	if a.K >= len(res.Coefficients) {
		return &AssertionError{
			Type:     AssertCoefficient,
			Expected: fmt.Sprintf("c_%d = %s", a.K, expr.FormatNumber(*a.Value)),
			Actual:   fmt.Sprintf("only %d coefficients", len(res.Coefficients)),
		}
	}
	got := res.Coefficients[a.K]
	if !approxEqual(got, *a.Value, tol) {
		return &AssertionError{
			Type:     AssertCoefficient,
			Expected: fmt.Sprintf("c_%d = %s", a.K, expr.FormatNumber(*a.Value)),
			Actual:   expr.FormatNumber(got),
		}
	}
	return nil
}

// assertConvergenceMonotone checks that the absolute error never grows from
// one partial sum to the next. Equal rows (zero coefficients) are allowed.
func assertConvergenceMonotone(res *taylor.Result, tol float64) error {
	var prev *float64
	for _, row := range res.Convergence {
		if row.AbsError == nil {
			return &AssertionError{
				Type:     AssertConvergenceMonotone,
				Expected: "an exact value at x",
				Actual:   "f(x) is undefined",
			}
		}
		if prev != nil && *row.AbsError > *prev+tol*max(1, *prev) {
			return &AssertionError{
				Type:     AssertConvergenceMonotone,
				Expected: fmt.Sprintf("|P_%d - f| <= %s", row.Order, expr.FormatNumber(*prev)),
				Actual:   expr.FormatNumber(*row.AbsError),
			}
		}
		prev = row.AbsError
	}
	return nil
}

// assertStepContains checks that some step of the stage contains the text.
func assertStepContains(res *taylor.Result, a Assertion) error {
	var texts []string
	for _, step := range res.Steps {
		if string(step.Stage) != a.Stage {
			continue
		}
		if strings.Contains(step.Text, a.Text) {
			return nil
		}
		texts = append(texts, step.Text)
	}
	actual := "no steps"
	if len(texts) > 0 {
		actual = fmt.Sprintf("%q", texts)
	}
	return &AssertionError{
		Type:     AssertStepContains,
		Expected: fmt.Sprintf("%s step containing %q", a.Stage, a.Text),
		Actual:   actual,
	}
}

// assertValueErrorBelow checks |P_n(x) - f(x)| < value.
func assertValueErrorBelow(res *taylor.Result, a Assertion) error {
	if res.ValueErrors.Absolute == nil {
		return &AssertionError{
			Type:     AssertValueErrorBelow,
			Expected: fmt.Sprintf("error below %s", expr.FormatNumber(*a.Value)),
			Actual:   "f(x) is undefined",
		}
	}
	if got := *res.ValueErrors.Absolute; got >= *a.Value {
		return &AssertionError{
			Type:     AssertValueErrorBelow,
			Expected: fmt.Sprintf("error below %s", expr.FormatNumber(*a.Value)),
			Actual:   expr.FormatNumber(got),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against an analysis result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(res *taylor.Result, assertions []Assertion, tol float64) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCoefficient:
			err = assertCoefficient(res, assertion, tol)
		case AssertConvergenceMonotone:
			err = assertConvergenceMonotone(res, tol)
		case AssertStepContains:
			err = assertStepContains(res, assertion)
		case AssertValueErrorBelow:
			err = assertValueErrorBelow(res, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
