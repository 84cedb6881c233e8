package cli

import (
	"errors"

	"github.com/roach88/taylorlab/internal/parse"
	"github.com/roach88/taylorlab/internal/request"
	"github.com/roach88/taylorlab/internal/store"
	"github.com/roach88/taylorlab/internal/taylor"
)

// CLI error codes.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeParse          = "E002" // Expression could not be parsed
	ErrCodeInvalidRequest = "E003" // Request file or flags rejected
	ErrCodeAnalysis       = "E004" // Analysis failed; details carry the analysis code
	ErrCodeNotFound       = "E005" // Run or path not found
	ErrCodeStore          = "E006" // Database error
	ErrCodeTestFailed     = "E007" // One or more scenarios failed
)

// failure is a classified command error.
type failure struct {
	code    string
	exit    int
	message string
	details any
}

// classify maps an error onto a CLI code, exit code and details.
func classify(err error) failure {
	var pe *parse.Error
	if errors.As(err, &pe) {
		return failure{
			code:    ErrCodeParse,
			exit:    ExitCommandError,
			message: pe.Error(),
			details: map[string]any{"kind": parse.Code, "position": pe.Pos},
		}
	}
	if request.IsRequestError(err) {
		return failure{code: ErrCodeInvalidRequest, exit: ExitCommandError, message: err.Error()}
	}
	if code := taylor.CodeOf(err); code != "" {
		return failure{
			code:    ErrCodeAnalysis,
			exit:    ExitFailure,
			message: err.Error(),
			details: map[string]any{"kind": code},
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		return failure{code: ErrCodeNotFound, exit: ExitCommandError, message: err.Error()}
	}
	return failure{code: ErrCodeGeneric, exit: ExitCommandError, message: err.Error()}
}

// fail reports err through the formatter and returns the matching
// ExitError.
func fail(f *OutputFormatter, err error) error {
	c := classify(err)
	if outErr := f.Error(c.code, c.message, c.details); outErr != nil {
		return outErr
	}
	return WrapExitError(c.exit, c.code, err)
}

// failWith reports an error under an explicit code.
func failWith(f *OutputFormatter, code string, exit int, message string, err error) error {
	if outErr := f.Error(code, message+": "+err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, message, err)
}

// failStore reports a database error. A missing run keeps its own code.
func failStore(f *OutputFormatter, message string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fail(f, err)
	}
	return failWith(f, ErrCodeStore, ExitCommandError, message, err)
}
