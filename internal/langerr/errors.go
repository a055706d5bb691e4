// Package langerr defines the Language's closed runtime error-kind
// enumeration (spec §7), shared by the value, linter, and interpreter
// packages so none of them needs to import a "lower" package's
// sibling just to report a failure.
package langerr

import (
	"fmt"

	"github.com/csml-lang/csml-go/internal/script"
)

// Kind is the closed set of runtime/static error categories.
type Kind string

const (
	Parse                     Kind = "Parse"
	Lint                      Kind = "Lint"
	UndefinedVariable         Kind = "UndefinedVariable"
	UndefinedMethod           Kind = "UndefinedMethod"
	TypeMismatch              Kind = "TypeMismatch"
	IllegalOperation          Kind = "IllegalOperation"
	DivisionByZero            Kind = "DivisionByZero"
	IndexOutOfBounds          Kind = "IndexOutOfBounds"
	InvalidRegex              Kind = "InvalidRegex"
	Http                      Kind = "Http"
	Jwt                       Kind = "Jwt"
	InvalidConstantExpression Kind = "InvalidConstantExpression"
	ReservedIdentifier        Kind = "ReservedIdentifier"
	Internal                  Kind = "Internal"
)

// Error is a positional runtime error: exactly the shape the turn's
// final "error" message is built from.
type Error struct {
	Kind     Kind
	Interval script.Interval
	Message  string
	Wrapped  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Interval, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// New builds an Error with a formatted message.
func New(kind Kind, iv script.Interval, format string, args ...any) *Error {
	return &Error{Kind: kind, Interval: iv, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that carries an underlying cause.
func Wrap(kind Kind, iv script.Interval, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Interval: iv, Message: fmt.Sprintf(format, args...), Wrapped: cause}
}
