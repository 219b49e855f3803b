package naming

import "errors"

// Sentinel errors for naming operations.
var (
	// ErrEmpty is returned when the template, or its rendering, is empty.
	ErrEmpty = errors.New("name template is empty")

	// ErrParse is returned when the template fails to parse.
	ErrParse = errors.New("name template parse error")

	// ErrExecute is returned when template execution fails.
	ErrExecute = errors.New("name template execution error")
)
