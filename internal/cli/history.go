package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/parse"
	"github.com/roach88/taylorlab/internal/report"
	"github.com/roach88/taylorlab/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Expr     string // restrict to runs of this expression
}

// HistoryOutput is the JSON payload of the history command.
type HistoryOutput struct {
	Runs  []store.RunSummary `json:"runs"`
	Total int                `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with analyze --db, newest first.

--expr selects runs of one expression. It is parsed and matched by
fingerprint, so "2x" and "2*x" select the same runs.

Examples:
  taylor history --db ./runs.db
  taylor history --db ./runs.db --expr "sin(x)" --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 for all)")
	cmd.Flags().StringVar(&opts.Expr, "expr", "", "only runs of this expression")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	list := store.ListOptions{Limit: opts.Limit}
	if opts.Expr != "" {
		e, err := parse.Parse(opts.Expr)
		if err != nil {
			return fail(f, err)
		}
		fp, err := expr.Fingerprint(e)
		if err != nil {
			return fail(f, err)
		}
		list.Fingerprint = fp
	}

	st, err := openExisting(opts.RootOptions, opts.Database)
	if err != nil {
		return failStore(f, "failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	runs, err := st.ListRuns(ctx, list)
	if err != nil {
		return failStore(f, "failed to list runs", err)
	}
	total, err := st.CountRuns(ctx)
	if err != nil {
		return failStore(f, "failed to count runs", err)
	}
	opts.logger().Debug("history listed", "runs", len(runs), "total", total)

	return f.Render(HistoryOutput{Runs: runs, Total: total}, func(w io.Writer) error {
		return report.WriteHistory(w, runs)
	})
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run",
		Long: `Print the full report of a recorded run.

The run ID may be abbreviated to any unique prefix of at least 8 characters.

Example:
  taylor show --db ./runs.db 0192f3c4-8d1e`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := openExisting(opts.RootOptions, opts.Database)
	if err != nil {
		return failStore(f, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(commandContext(cmd), id)
	if err != nil {
		return failStore(f, "failed to read run", err)
	}

	return f.Render(run, func(w io.Writer) error {
		return report.WriteRun(w, run)
	})
}
