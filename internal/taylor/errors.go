package taylor

import (
	"errors"
	"fmt"

	"github.com/roach88/taylorlab/internal/diff"
	"github.com/roach88/taylorlab/internal/eval"
)

// ErrorCode categorizes analysis errors raised by this package.
// Errors from diff and eval pass through wrapped.
type ErrorCode string

const (
	// ErrCodeOrderLimit indicates the requested order exceeds WithMaxOrder.
	ErrCodeOrderLimit ErrorCode = "ORDER_LIMIT"

	// ErrCodeNonFinite indicates the polynomial value or derivative
	// overflowed at the evaluation point.
	ErrCodeNonFinite ErrorCode = "NON_FINITE_RESULT"

	// ErrCodeInvalidPlot indicates an unusable sampling range.
	ErrCodeInvalidPlot ErrorCode = "INVALID_PLOT_RANGE"
)

// CodeDomainError labels *eval.DomainError failures in CodeOf.
const CodeDomainError = "DOMAIN_ERROR"

// CodeOf returns the stable code of an error returned by Analyze, or ""
// when err carries none.
func CodeOf(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return string(te.Code)
	}
	var de *diff.Error
	if errors.As(err, &de) {
		return string(de.Code)
	}
	if eval.IsDomainError(err) {
		return CodeDomainError
	}
	return ""
}

// Error is an analysis error raised by this package.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsOrderLimit returns true if the error is an order limit error.
// Uses errors.As to handle wrapped errors.
func IsOrderLimit(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeOrderLimit
	}
	return false
}

// ReferenceError records why an exact reference value is unavailable.
// Analyze never returns it; it is logged and summarized in the steps.
type ReferenceError struct {
	// Quantity is "f(x)" or "f'(x)".
	Quantity string
	X        float64
	Err      error
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s undefined at x=%g: %v", e.Quantity, e.X, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// IsReferenceError returns true if the error is a ReferenceError.
func IsReferenceError(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}
