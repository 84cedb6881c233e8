package diff

import (
	"github.com/roach88/taylorlab/internal/expr"
)

// DefaultMaxNodes bounds the size of any derivative built by K or Sequence.
// Iterated derivatives of products and quotients grow quickly; the budget
// turns runaway growth into an error instead of exhausting memory.
const DefaultMaxNodes = 250_000

type config struct {
	maxNodes int
}

// Option configures K and Sequence.
type Option func(*config)

// WithMaxNodes sets the node budget for each derivative.
//
// Default: 250000 nodes (DefaultMaxNodes).
// Use WithMaxNodes(50) for testing budget enforcement.
// A value <= 0 disables the check.
func WithMaxNodes(n int) Option {
	return func(c *config) {
		c.maxNodes = n
	}
}

func newConfig(opts []Option) config {
	c := config{maxNodes: DefaultMaxNodes}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// K returns the k-th derivative of e by applying Once k times.
// K(e, 0) returns e unchanged.
func K(e expr.Expr, k int, opts ...Option) (expr.Expr, error) {
	if k < 0 {
		return nil, newInvalidOrderError(k)
	}
	if k == 0 {
		return e, nil
	}
	if err := checkGrammar(e); err != nil {
		return nil, err
	}

	cfg := newConfig(opts)
	cur := e
	for i := 1; i <= k; i++ {
		cur = once(cur)
		if err := cfg.checkBudget(cur, i); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Sequence returns the derivatives of e of orders 0 through k, built in a
// single iterated pass. out[0] is e itself.
func Sequence(e expr.Expr, k int, opts ...Option) ([]expr.Expr, error) {
	if k < 0 {
		return nil, newInvalidOrderError(k)
	}
	if err := checkGrammar(e); err != nil {
		return nil, err
	}

	cfg := newConfig(opts)
	out := make([]expr.Expr, k+1)
	out[0] = e
	for i := 1; i <= k; i++ {
		out[i] = once(out[i-1])
		if err := cfg.checkBudget(out[i], i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c config) checkBudget(d expr.Expr, order int) error {
	if c.maxNodes <= 0 {
		return nil
	}
	if n := expr.NodeCount(d); n > c.maxNodes {
		return newTreeTooLargeError(order, n, c.maxNodes)
	}
	return nil
}
