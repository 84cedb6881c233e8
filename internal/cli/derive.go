package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/taylorlab/internal/diff"
	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/parse"
)

// DeriveOptions holds flags for the derive command.
type DeriveOptions struct {
	*RootOptions
	Order    int
	LaTeX    bool
	MaxNodes int
}

// Derivative is one entry of the derivative listing.
type Derivative struct {
	Order int    `json:"order"`
	Text  string `json:"text"`
	LaTeX string `json:"latex,omitempty"`
	Nodes int    `json:"nodes"`
}

// DeriveOutput is the JSON payload of the derive command.
type DeriveOutput struct {
	Expression  string       `json:"expression"`
	Derivatives []Derivative `json:"derivatives"`
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "derive <expression>",
		Short: "List the symbolic derivatives of an expression",
		Long: `Differentiate an expression repeatedly and print f, f', ..., f^(k).

Examples:
  taylor derive "x*sin(x)" --order 3
  taylor derive '\frac{1}{x}' --order 2 --latex`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Order, "order", "n", 1, "highest derivative order")
	cmd.Flags().BoolVar(&opts.LaTeX, "latex", false, "print LaTeX instead of plain text")
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", diff.DefaultMaxNodes, "node budget per derivative")

	return cmd
}

func runDerive(opts *DeriveOptions, src string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	e, err := parse.Parse(src)
	if err != nil {
		return fail(f, err)
	}
	seq, err := diff.Sequence(e, opts.Order, diff.WithMaxNodes(opts.MaxNodes))
	if err != nil {
		return fail(f, err)
	}
	opts.logger().Debug("derivatives built", "order", opts.Order, "nodes", expr.NodeCount(seq[len(seq)-1]))

	out := DeriveOutput{
		Expression:  expr.String(e),
		Derivatives: make([]Derivative, len(seq)),
	}
	for k, d := range seq {
		out.Derivatives[k] = Derivative{Order: k, Text: expr.String(d), Nodes: expr.NodeCount(d)}
		if opts.LaTeX {
			out.Derivatives[k].LaTeX = expr.LaTeX(d)
		}
	}

	return f.Render(out, func(w io.Writer) error {
		for _, d := range out.Derivatives {
			text := d.Text
			if opts.LaTeX {
				text = d.LaTeX
			}
			if _, err := fmt.Fprintf(w, "d%d: %s\n", d.Order, text); err != nil {
				return err
			}
		}
		return nil
	})
}
