package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/taylorlab/internal/diff"
	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/parse"
)

// Snapshot renders the stable parts of a successful scenario: the parsed
// expression, the polynomial and the derivative listing f^(0)..f^(n).
// Numbers appear in shortest round-trip form, so a snapshot changes only
// when the symbolic output or the arithmetic changes.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	if result.Analysis == nil {
		return nil, fmt.Errorf("scenario %s has no analysis to snapshot", scenario.Name)
	}
	e, err := parse.Parse(scenario.Expression)
	if err != nil {
		return nil, err
	}
	seq, err := diff.Sequence(e, scenario.Order)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "expression: %s\n", result.Analysis.Expression)
	fmt.Fprintf(&buf, "polynomial: %s\n", result.Analysis.Polynomial)
	for i, d := range seq {
		fmt.Fprintf(&buf, "d%d: %s\n", i, expr.String(d))
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can make further checks.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares the snapshot of an already executed scenario
// against its golden file. Test failure (via goldie) occurs if the snapshot
// doesn't match.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snap, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snap)
	return nil
}
