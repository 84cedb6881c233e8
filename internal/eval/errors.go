package eval

import (
	"errors"
	"fmt"

	"github.com/roach88/taylorlab/internal/expr"
)

// DomainError is returned when evaluation leaves the real domain or
// produces a non-finite value.
type DomainError struct {
	// Op names the failing node ("log", "sqrt", "pow", "mul", ...).
	Op string

	// Arg is the offending operand (the function argument or the base).
	Arg float64

	// X is the evaluation point.
	X float64

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error in %s at x=%s: %s (arg=%s)",
		e.Op, expr.FormatNumber(e.X), e.Message, expr.FormatNumber(e.Arg))
}

// IsDomainError returns true if the error is a DomainError.
// Uses errors.As to handle wrapped errors.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
