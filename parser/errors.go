package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors for parser operations.
var (
	// ErrParserNotFound indicates the requested parser is not registered.
	ErrParserNotFound = errors.New("parser not found")

	// ErrEmpty indicates the document had no text to parse.
	ErrEmpty = errors.New("empty document")
)

// Error wraps parser failures with context.
type Error struct {
	Parser string // Parser name ("PackageList", ...)
	Op     string // Operation that failed ("run", "load")
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Parser != "" {
		return fmt.Sprintf("%s %s: %v", e.Parser, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new parser error.
func NewError(parser, op string, err error) *Error {
	return &Error{Parser: parser, Op: op, Err: err}
}
