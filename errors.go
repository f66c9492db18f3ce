package cellgraph

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Call sites distinguish them with errors.Is; some
// are enriched with fmt.Errorf("%w: ...") to carry the offending text.
var (
	ErrParse             = errors.New("parse error")
	ErrCircularReference = errors.New("circular reference detected")
	ErrInvalidRef        = errors.New("invalid cell reference")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrOutOfBounds       = errors.New("cell reference out of bounds")
	ErrSerialization     = errors.New("serialization error")
)

// TypeError reports a coercion failure during evaluation, e.g. a binary
// arithmetic operator applied to a non-numeric operand.
type TypeError struct {
	Expected string
	Got      string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: expected %s, got %s", e.Expected, e.Got)
}

func (e *TypeError) Unwrap() error { return errTypeSentinel }

var errTypeSentinel = errors.New("type error")

// ArgumentCountError reports a built-in function called with the wrong
// number of arguments.
type ArgumentCountError struct {
	Func     string
	Expected string
	Got      int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("invalid argument count for %s: expected %s, got %d", e.Func, e.Expected, e.Got)
}

func (e *ArgumentCountError) Unwrap() error { return errArgCountSentinel }

var errArgCountSentinel = errors.New("argument count error")

// newParseError wraps ErrParse with context, matching the teacher's
// fmt.Errorf("%w: ...", ErrExprParse) idiom.
func newParseError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func newInvalidRefError(text string) error {
	return fmt.Errorf("%w: %q", ErrInvalidRef, text)
}

func newOutOfBoundsError(ref CellRef) error {
	return fmt.Errorf("%w: %s", ErrOutOfBounds, ref.A1())
}

func newUnknownFunctionError(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownFunction, name)
}
