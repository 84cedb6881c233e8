package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/roach88/taylorlab/internal/store"
)

// WriteHistory renders stored run summaries, newest first as given.
func WriteHistory(w io.Writer, runs []store.RunSummary) error {
	md := markdown.NewMarkdown(w)
	md.H1("Run history")
	md.PlainText("")
	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.Seq, 10),
			code(r.ID),
			code(r.Expression),
			num(r.Center),
			num(r.X),
			strconv.Itoa(r.Order),
			num(r.ApproxValue),
			r.CreatedAt.Format(time.RFC3339),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Seq", "ID", "Expression", "a", "x", "n", "P_n(x)", "Created"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainText(fmt.Sprintf("%d run(s)", len(runs)))
	return md.Build()
}

// WriteRun renders a stored run: its identity followed by the full report.
func WriteRun(w io.Writer, run store.Run) error {
	md := markdown.NewMarkdown(w)
	md.BulletList(
		"Run "+code(run.ID),
		"Recorded "+run.CreatedAt.Format(time.RFC3339),
		"Fingerprint "+code(run.Fingerprint),
	)
	md.PlainText("")
	if err := md.Build(); err != nil {
		return err
	}
	if run.Result == nil {
		return fmt.Errorf("run %s has no stored result", run.ID)
	}
	return Write(w, run.Result)
}
