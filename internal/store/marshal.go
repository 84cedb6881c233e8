package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/taylorlab/internal/expr"
	"github.com/roach88/taylorlab/internal/taylor"
)

// timeLayout stores timestamps as sortable RFC 3339 text with nanoseconds.
const timeLayout = time.RFC3339Nano

// marshalResult converts a result to JSON TEXT for storage.
// HTML escaping is disabled so LaTeX and comparison operators stay readable.
func marshalResult(res *taylor.Result) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func unmarshalResult(data string) (*taylor.Result, error) {
	var res taylor.Result
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &res, nil
}

func marshalTree(e expr.Expr) (string, error) {
	data, err := expr.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal tree: %w", err)
	}
	return string(data), nil
}

func unmarshalTree(data string) (expr.Expr, error) {
	e, err := expr.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return e, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}
