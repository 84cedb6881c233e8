package parse

import (
	"errors"
	"fmt"
)

// Code is the stable error code callers report for parse failures.
const Code = "PARSE_ERROR"

// Error reports malformed input. Pos is the rune offset into the
// normalized source.
type Error struct {
	Pos     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Message)
}

func errorf(pos int, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// IsParseError reports whether err is or wraps an *Error.
func IsParseError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}
