package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/taylor"
)

// ErrNotFound is returned by ReadRun for an unknown ID.
var ErrNotFound = errors.New("run not found")

// RunSummary is one history row without the stored payloads.
type RunSummary struct {
	Seq         int64     `json:"seq"`
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Source      string    `json:"source"`
	Expression  string    `json:"expression"`
	Center      float64   `json:"center"`
	X           float64   `json:"x"`
	Order       int       `json:"order"`
	ApproxValue float64   `json:"approx_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// Run is a stored run with its expression tree and full result.
type Run struct {
	RunSummary
	Tree   expr.Expr      `json:"-"`
	Result *taylor.Result `json:"result"`
}

// ListOptions filters ListRuns.
type ListOptions struct {
	// Limit caps the number of rows. Zero or negative means no limit.
	Limit int
	// Fingerprint restricts the listing to one expression when set.
	Fingerprint string
}

const summaryColumns = `seq, id, fingerprint, source, expression, center, x_eval, "order", approx_value, created_at`

// ReadRun retrieves a run by ID, or by a unique ID prefix of at least 8
// characters. Returns ErrNotFound if nothing matches.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	query := `SELECT ` + summaryColumns + `, tree, result FROM runs WHERE id = ?`
	args := []any{id}
	if len(id) >= 8 && len(id) < 36 {
		query = `SELECT ` + summaryColumns + `, tree, result FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY seq ASC LIMIT 2`
		args = []any{escapeLike(id) + "%"}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate runs: %w", err)
	}

	switch len(runs) {
	case 0:
		return Run{}, fmt.Errorf("read run %q: %w", id, ErrNotFound)
	case 1:
		return runs[0], nil
	}
	return Run{}, fmt.Errorf("read run: prefix %q matches more than one run", id)
}

// ListRuns returns run summaries, newest first.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM runs`
	var args []any
	if opts.Fingerprint != "" {
		query += ` WHERE fingerprint = ?`
		args = append(args, opts.Fingerprint)
	}
	query += ` ORDER BY seq DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		var sum RunSummary
		var created string
		if err := rows.Scan(&sum.Seq, &sum.ID, &sum.Fingerprint, &sum.Source, &sum.Expression,
			&sum.Center, &sum.X, &sum.Order, &sum.ApproxValue, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sum.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// CountRuns returns the number of stored runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var created, tree, result string
	sum := &run.RunSummary
	if err := rows.Scan(&sum.Seq, &sum.ID, &sum.Fingerprint, &sum.Source, &sum.Expression,
		&sum.Center, &sum.X, &sum.Order, &sum.ApproxValue, &created, &tree, &result); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if sum.CreatedAt, err = parseTime(created); err != nil {
		return Run{}, err
	}
	if run.Tree, err = unmarshalTree(tree); err != nil {
		return Run{}, err
	}
	if run.Result, err = unmarshalResult(result); err != nil {
		return Run{}, err
	}
	return run, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
