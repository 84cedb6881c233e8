package harness

import (
	"fmt"

	"github.com/roach88/taylorlab/internal/taylor"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors contains failed expectation messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// ErrorCode is the code of the analysis failure, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// RunID is the ID of the stored run for successful analyses.
	RunID string `json:"run_id,omitempty"`

	// Analysis is the analysis result, nil when the analysis failed.
	Analysis *taylor.Result `json:"analysis,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	if len(args) == 0 {
		r.Errors = append(r.Errors, format)
	} else {
		r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	}
	r.Pass = false
}
