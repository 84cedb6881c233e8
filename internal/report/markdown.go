// Package report renders analysis results as Markdown.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/taylor"
)

const (
	syntaxText  = markdown.SyntaxHighlight("text")
	syntaxLaTeX = markdown.SyntaxHighlight("latex")
)

// Write renders res to w.
func Write(w io.Writer, res *taylor.Result) error {
	md := markdown.NewMarkdown(w)

	writeSummary(md, res)
	writePolynomial(md, res)
	writeCoefficients(md, res)
	writeErrors(md, res)
	writeConvergence(md, res)
	writePlot(md, res)
	writeSteps(md, res)

	return md.Build()
}

func writeSummary(md *markdown.Markdown, res *taylor.Result) {
	md.H1(fmt.Sprintf("Taylor polynomial of order %d", res.Order))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Expression", code(res.Expression)},
			{"Center a", num(res.Center)},
			{"Evaluation point x", num(res.X)},
			{"Fingerprint", code(short(res.Fingerprint))},
			{"P_n(x)", num(res.ApproxValue)},
			{"f(x)", optional(res.ExactValue)},
			{"P_n'(x)", num(res.DerivativeApprox)},
			{"f'(x)", optional(res.DerivativeExact)},
			{"f'(x), central difference", optional(res.DerivativeNumeric)},
		},
	})
	md.PlainText("")
}

func writePolynomial(md *markdown.Markdown, res *taylor.Result) {
	md.H2("Polynomial")
	md.PlainText("")
	md.CodeBlocks(syntaxText, res.Polynomial)
	md.PlainText("")
	md.CodeBlocks(syntaxLaTeX, res.PolynomialLaTeX)
	md.PlainText("")
}

func writeCoefficients(md *markdown.Markdown, res *taylor.Result) {
	md.H2("Coefficients")
	md.PlainText("")
	rows := make([][]string, len(res.Coefficients))
	for k, c := range res.Coefficients {
		rows[k] = []string{strconv.Itoa(k), num(c)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"k", "c_k"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeErrors(md *markdown.Markdown, res *taylor.Result) {
	md.H2("Errors")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Quantity", "Absolute", "Relative"},
		Rows: [][]string{
			{"Value", optional(res.ValueErrors.Absolute), optional(res.ValueErrors.Relative)},
			{"Derivative", optional(res.DerivativeErrors.Absolute), optional(res.DerivativeErrors.Relative)},
		},
	})
	md.PlainText("")
	if res.ExactValue == nil {
		md.Warningf("f is undefined at x = %s; value errors are unavailable.", num(res.X))
		md.PlainText("")
	}
	if res.DerivativeExact == nil {
		md.Warningf("f' is undefined at x = %s; derivative errors are unavailable.", num(res.X))
		md.PlainText("")
	}
}

func writeConvergence(md *markdown.Markdown, res *taylor.Result) {
	md.H2("Convergence")
	md.PlainText("")
	rows := make([][]string, len(res.Convergence))
	for i, row := range res.Convergence {
		rows[i] = []string{
			strconv.Itoa(row.Order),
			num(row.Approx),
			optional(row.AbsError),
			optional(row.RelErrorPct),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"n", "P_n(x)", "Absolute error", "Relative error (%)"},
		Rows:   rows,
	})
	md.PlainText("")
	if res.ExactValue != nil && *res.ExactValue == 0 {
		md.Note("f(x) = 0, so relative errors are omitted from the table.")
		md.PlainText("")
	}
}

func writePlot(md *markdown.Markdown, res *taylor.Result) {
	if res.Plot == nil {
		return
	}
	undefined := 0
	for _, f := range res.Plot.F {
		if f == nil {
			undefined++
		}
	}
	md.H2("Plot samples")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("range [%s, %s]", num(res.Plot.Min), num(res.Plot.Max)),
		fmt.Sprintf("%d points", len(res.Plot.X)),
		fmt.Sprintf("%d points where f is undefined", undefined),
	)
	md.PlainText("")
}

func writeSteps(md *markdown.Markdown, res *taylor.Result) {
	md.H2("Steps")
	md.PlainText("")
	items := make([]string, len(res.Steps))
	for i, s := range res.Steps {
		items[i] = fmt.Sprintf("[%s] %s", s.Stage, s.Text)
	}
	md.OrderedList(items...)
}

func num(v float64) string {
	return expr.FormatNumber(v)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return num(*v)
}

func code(s string) string {
	return "`" + s + "`"
}

// short abbreviates a fingerprint for display.
func short(fp string) string {
	if len(fp) <= 16 {
		return fp
	}
	return fp[:16]
}
