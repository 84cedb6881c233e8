package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/taylor"
)

// WriteRun appends a run for the analysis of e and returns its summary.
// The result and the tree are stored as JSON.
func (s *Store) WriteRun(ctx context.Context, e expr.Expr, res *taylor.Result) (RunSummary, error) {
	if res == nil {
		return RunSummary{}, errors.New("write run: nil result")
	}
	resultJSON, err := marshalResult(res)
	if err != nil {
		return RunSummary{}, fmt.Errorf("write run: %w", err)
	}
	treeJSON, err := marshalTree(e)
	if err != nil {
		return RunSummary{}, fmt.Errorf("write run: %w", err)
	}

	sum := RunSummary{
		ID:          s.ids.Generate(),
		Fingerprint: res.Fingerprint,
		Source:      res.Source,
		Expression:  res.Expression,
		Center:      res.Center,
		X:           res.X,
		Order:       res.Order,
		ApproxValue: res.ApproxValue,
		CreatedAt:   s.clock.Now().UTC(),
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, fingerprint, source, expression, tree, center, x_eval, "order", approx_value, created_at, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sum.ID,
		sum.Fingerprint,
		sum.Source,
		sum.Expression,
		treeJSON,
		sum.Center,
		sum.X,
		sum.Order,
		sum.ApproxValue,
		sum.CreatedAt.Format(timeLayout),
		resultJSON,
	)
	if err != nil {
		return RunSummary{}, fmt.Errorf("write run: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return RunSummary{}, fmt.Errorf("write run: get seq: %w", err)
	}
	sum.Seq = seq
	return sum, nil
}
