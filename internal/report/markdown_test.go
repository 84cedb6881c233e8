package report

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/taylor"
)

func analyze(t *testing.T, in taylor.Input) *taylor.Result {
	t.Helper()
	a := taylor.New(taylor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	res, err := a.Analyze(in)
	require.NoError(t, err)
	return res
}

func TestWrite_Sections(t *testing.T) {
	res := analyze(t, taylor.Input{
		Expr:  expr.Apply(expr.Exp, expr.X()),
		X:     0.5,
		Order: 3,
		Plot:  &taylor.PlotRange{Min: -1, Max: 1, NumPoints: 10},
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))
	out := buf.String()

	for _, want := range []string{
		"# Taylor polynomial of order 3",
		"## Polynomial",
		"## Coefficients",
		"## Errors",
		"## Convergence",
		"## Plot samples",
		"## Steps",
		"`exp(x)`",
		res.Polynomial,
		res.PolynomialLaTeX,
		"```latex",
		"10 points",
		"[coefficients]",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "[!WARNING]")
}

func TestWrite_UndefinedReference(t *testing.T) {
	res := analyze(t, taylor.Input{
		Expr:   expr.Apply(expr.Log, expr.X()),
		Center: 1,
		X:      -1,
		Order:  2,
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "f is undefined at x = -1")
	assert.NotContains(t, out, "f' is undefined")
	assert.NotContains(t, out, "## Plot samples")
}

func TestWrite_ZeroExact(t *testing.T) {
	res := analyze(t, taylor.Input{
		Expr:   expr.Apply(expr.Sin, expr.X()),
		Center: 0.5,
		X:      0,
		Order:  2,
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))
	assert.Contains(t, buf.String(), "relative errors are omitted")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", short("abc"))
	assert.Equal(t, "0123456789abcdef", short("0123456789abcdef0123"))
}
