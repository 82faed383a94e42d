package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures.
type ErrorKind int

const (
	// SyntaxError reports malformed statement text; Position locates the
	// offending token.
	SyntaxError ErrorKind = iota
	// SchemaError reports an unknown table or column, or a duplicate
	// table name.
	SchemaError
	// ConstraintError reports primary-key duplication, an arity mismatch
	// or a value that does not conform to its column type.
	ConstraintError
	// IOError reports a backing-store read or write failure.
	IOError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case SchemaError:
		return "schema error"
	case ConstraintError:
		return "constraint error"
	case IOError:
		return "io error"
	default:
		return "error"
	}
}

// Error is the typed failure returned by every engine operation.
// Position is the byte offset of the offending token for syntax errors,
// and -1 otherwise.
type Error struct {
	Kind     ErrorKind
	Message  string
	Position int
	cause    error
}

func (e *Error) Error() string {
	if e.Kind == SyntaxError && e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Kind, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewSyntaxError(position int, format string, args ...any) *Error {
	return &Error{Kind: SyntaxError, Message: fmt.Sprintf(format, args...), Position: position}
}

func NewSchemaError(format string, args ...any) *Error {
	return &Error{Kind: SchemaError, Message: fmt.Sprintf(format, args...), Position: -1}
}

func NewConstraintError(format string, args ...any) *Error {
	return &Error{Kind: ConstraintError, Message: fmt.Sprintf(format, args...), Position: -1}
}

// NewIOError wraps an underlying filesystem or encoding failure.
func NewIOError(cause error, format string, args ...any) *Error {
	return &Error{Kind: IOError, Message: fmt.Sprintf(format, args...) + ": " + cause.Error(), Position: -1, cause: cause}
}

// KindOf extracts the error kind, or ok=false for untyped errors.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a typed engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
