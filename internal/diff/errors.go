package diff

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes differentiation errors.
type ErrorCode string

const (
	// ErrCodeInvalidOrder indicates a negative derivative order.
	ErrCodeInvalidOrder ErrorCode = "INVALID_ORDER"

	// ErrCodeUnsupported indicates a node outside the expression grammar.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_EXPRESSION"

	// ErrCodeTreeTooLarge indicates a derivative exceeded the node budget.
	ErrCodeTreeTooLarge ErrorCode = "TREE_TOO_LARGE"
)

// Error is returned by Once, K and Sequence.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Order is the derivative order being built, when known.
	Order int

	// Nodes and Limit are set for ErrCodeTreeTooLarge.
	Nodes int
	Limit int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Order > 0 {
		return fmt.Sprintf("%s: %s (order=%d)", e.Code, e.Message, e.Order)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newInvalidOrderError(k int) *Error {
	return &Error{
		Code:    ErrCodeInvalidOrder,
		Message: fmt.Sprintf("derivative order must be >= 0, got %d", k),
	}
}

func newUnsupportedError(what string) *Error {
	return &Error{
		Code:    ErrCodeUnsupported,
		Message: "unsupported " + what,
	}
}

func newTreeTooLargeError(order, nodes, limit int) *Error {
	return &Error{
		Code:    ErrCodeTreeTooLarge,
		Message: fmt.Sprintf("derivative has %d nodes, limit is %d", nodes, limit),
		Order:   order,
		Nodes:   nodes,
		Limit:   limit,
	}
}

// IsInvalidOrder returns true if the error is an invalid order error.
// Uses errors.As to handle wrapped errors.
func IsInvalidOrder(err error) bool {
	return hasCode(err, ErrCodeInvalidOrder)
}

// IsUnsupported returns true if the error reports a node outside the grammar.
func IsUnsupported(err error) bool {
	return hasCode(err, ErrCodeUnsupported)
}

// IsTreeTooLarge returns true if the error reports an exceeded node budget.
func IsTreeTooLarge(err error) bool {
	return hasCode(err, ErrCodeTreeTooLarge)
}

func hasCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
