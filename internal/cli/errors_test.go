package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/taylorlab/internal/parse"
	"github.com/roach88/taylorlab/internal/request"
	"github.com/roach88/taylorlab/internal/store"
	"github.com/roach88/taylorlab/internal/taylor"
)

func TestClassify(t *testing.T) {
	_, parseErr := parse.Parse("x $")
	require.Error(t, parseErr)

	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"parse", parseErr, ErrCodeParse, ExitCommandError},
		{"request", &request.Error{Field: "order", Message: "must be >= 0"}, ErrCodeInvalidRequest, ExitCommandError},
		{"analysis", &taylor.Error{Code: taylor.ErrCodeOrderLimit, Message: "too big"}, ErrCodeAnalysis, ExitFailure},
		{"wrapped analysis", fmt.Errorf("run: %w", &taylor.Error{Code: taylor.ErrCodeNonFinite}), ErrCodeAnalysis, ExitFailure},
		{"not found", fmt.Errorf("show: %w", store.ErrNotFound), ErrCodeNotFound, ExitCommandError},
		{"other", errors.New("boom"), ErrCodeGeneric, ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classify(tt.err)
			assert.Equal(t, tt.code, c.code)
			assert.Equal(t, tt.exit, c.exit)
			assert.NotEmpty(t, c.message)
		})
	}
}

func TestClassify_ParseDetails(t *testing.T) {
	_, err := parse.Parse("x + y")
	c := classify(err)
	assert.Equal(t, map[string]any{"kind": "PARSE_ERROR", "position": 4}, c.details)
}

func TestFail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := fail(f, &taylor.Error{Code: taylor.ErrCodeOrderLimit, Message: "order 9 exceeds limit 3"})
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E004]: ORDER_LIMIT: order 9 exceeds limit 3")
}

func TestFailStore(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := failStore(f, "failed to list runs", errors.New("database is locked"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E006]: failed to list runs: database is locked")

	buf.Reset()
	_ = failStore(f, "failed to read run", store.ErrNotFound)
	assert.Contains(t, buf.String(), "Error [E005]")
}
