package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/taylorlab/internal/diff"
	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/parse"
	"github.com/roach88/taylorlab/internal/report"
	"github.com/roach88/taylorlab/internal/request"
	"github.com/roach88/taylorlab/internal/store"
	"github.com/roach88/taylorlab/internal/taylor"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions

	RequestFile string // request file (.yaml, .yml, .json, .cue)
	TreeFile    string // JSON expression tree instead of text

	Center    float64
	X         float64
	Order     int
	Plot      bool
	PlotMin   float64
	PlotMax   float64
	NumPoints int

	MaxOrder int
	MaxNodes int

	Database string // optional run history
}

// AnalyzeOutput is the JSON payload of the analyze command.
type AnalyzeOutput struct {
	RunID  string         `json:"run_id,omitempty"`
	Result *taylor.Result `json:"result"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze [expression]",
		Short: "Build and evaluate a Taylor polynomial",
		Long: `Expand an expression in x around a center and compare the polynomial
against the function and its derivative at an evaluation point.

The expression comes from exactly one of: the argument (plain text or
LaTeX), --request (a YAML, JSON or CUE request file) or --tree (a JSON
expression tree). Flags given explicitly override request file fields.

Examples:
  taylor analyze "sin(x)" --x 0.5 --order 7
  taylor analyze '\frac{1}{1-x}' --center 0 --x 0.3 --plot
  taylor analyze --request job.cue --format json
  taylor analyze "e^x" --x 1 --db ./runs.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RequestFile, "request", "", "request file (.yaml, .yml, .json, .cue)")
	cmd.Flags().StringVar(&opts.TreeFile, "tree", "", "JSON expression tree file")
	cmd.Flags().Float64Var(&opts.Center, "center", 0, "expansion point a")
	cmd.Flags().Float64Var(&opts.X, "x", 0, "evaluation point")
	cmd.Flags().IntVarP(&opts.Order, "order", "n", request.DefaultOrder, "polynomial order")
	cmd.Flags().BoolVar(&opts.Plot, "plot", false, "sample f and P_n on the default window")
	cmd.Flags().Float64Var(&opts.PlotMin, "plot-min", 0, "lower bound of the sampling window")
	cmd.Flags().Float64Var(&opts.PlotMax, "plot-max", 0, "upper bound of the sampling window")
	cmd.Flags().IntVar(&opts.NumPoints, "points", request.DefaultNumPoints, "number of plot samples")
	cmd.Flags().IntVar(&opts.MaxOrder, "max-order", taylor.DefaultMaxOrder, "largest accepted order")
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", diff.DefaultMaxNodes, "node budget per derivative")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	log := opts.logger()

	req, tree, err := buildRequest(opts, args, cmd)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fail(f, err)
	}

	if tree == nil {
		tree, err = parse.Parse(req.Expression)
		if err != nil {
			return fail(f, err)
		}
	}
	log.Debug("expression ready", "expression", expr.String(tree), "nodes", expr.NodeCount(tree))

	analyzer := taylor.New(
		taylor.WithMaxOrder(opts.MaxOrder),
		taylor.WithMaxNodes(opts.MaxNodes),
		taylor.WithLogger(log),
	)
	source := req.Expression
	if opts.TreeFile != "" {
		source = ""
	}
	res, err := analyzer.Analyze(taylor.Input{
		Expr:   tree,
		Source: source,
		Center: req.Center,
		X:      req.X,
		Order:  req.Order,
		Plot:   req.PlotRange(),
	})
	if err != nil {
		return fail(f, err)
	}

	out := AnalyzeOutput{Result: res}
	if opts.Database != "" {
		id, err := recordRun(opts, cmd, tree, res)
		if err != nil {
			return failStore(f, "failed to record run", err)
		}
		out.RunID = id
	}

	return f.Render(out, func(w io.Writer) error {
		if err := report.Write(w, res); err != nil {
			return err
		}
		if out.RunID != "" {
			fmt.Fprintf(w, "\nRecorded as run %s\n", out.RunID)
		}
		return nil
	})
}

// buildRequest resolves the input source and merges explicit flags over a
// request file. tree is non-nil only for --tree input.
func buildRequest(opts *AnalyzeOptions, args []string, cmd *cobra.Command) (*request.Request, expr.Expr, error) {
	f := opts.formatter(cmd)

	sources := 0
	if len(args) == 1 {
		sources++
	}
	if opts.RequestFile != "" {
		sources++
	}
	if opts.TreeFile != "" {
		sources++
	}
	if sources != 1 {
		err := NewExitError(ExitCommandError, "exactly one of an expression argument, --request or --tree is required")
		if outErr := f.Error(ErrCodeInvalidRequest, err.Message, nil); outErr != nil {
			return nil, nil, outErr
		}
		return nil, nil, err
	}

	req := request.Default()
	var tree expr.Expr
	switch {
	case opts.RequestFile != "":
		loaded, err := request.Load(opts.RequestFile)
		if err != nil {
			return nil, nil, failWith(f, ErrCodeInvalidRequest, ExitCommandError, "failed to load request", err)
		}
		req = *loaded
		opts.logger().Debug("request loaded", "path", opts.RequestFile)
	case opts.TreeFile != "":
		data, err := os.ReadFile(opts.TreeFile)
		if err != nil {
			return nil, nil, failWith(f, ErrCodeNotFound, ExitCommandError, "failed to read tree", err)
		}
		tree, err = expr.Unmarshal(data)
		if err != nil {
			return nil, nil, failWith(f, ErrCodeInvalidRequest, ExitCommandError, "invalid expression tree", err)
		}
		req.Expression = expr.String(tree)
	default:
		req.Expression = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("center") {
		req.Center = opts.Center
	}
	if flags.Changed("x") {
		req.X = opts.X
	}
	if flags.Changed("order") {
		req.Order = opts.Order
	}
	if flags.Changed("plot") {
		req.Plot = opts.Plot
	}
	if flags.Changed("plot-min") {
		req.PlotMin = &opts.PlotMin
	}
	if flags.Changed("plot-max") {
		req.PlotMax = &opts.PlotMax
	}
	if flags.Changed("points") {
		req.NumPoints = opts.NumPoints
	}
	return &req, tree, nil
}

// recordRun appends the run to the history database.
func recordRun(opts *AnalyzeOptions, cmd *cobra.Command, tree expr.Expr, res *taylor.Result) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	summary, err := st.WriteRun(commandContext(cmd), tree, res)
	if err != nil {
		return "", err
	}
	opts.logger().Info("run recorded", "id", summary.ID, "seq", summary.Seq, "db", opts.Database)
	return summary.ID, nil
}
