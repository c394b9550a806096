// Package sgerrors defines the single error type surfaced across the
// corebridge backend to IPC callers.
package sgerrors

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
)

// Kind classifies an Error for presentation and retry policy decisions.
type Kind string

// Error kinds surfaced to the UI, see spec §7.
const (
	KindConfig          Kind = "config"
	KindEnvironment     Kind = "environment"
	KindStartup         Kind = "startup"
	KindNetwork         Kind = "network"
	KindCancellation    Kind = "cancellation"
	KindPlatformCommand Kind = "platform_command"
)

// Error is the unified error type carrying a human message, a stable
// machine code, and a classification kind.
type Error struct {
	Message string
	Code    string
	Kind    Kind
	cause   error
}

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Message: message, Kind: kind}
}

// WithCode attaches a stable machine-readable code and returns the receiver.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// Wrap builds an Error that carries cause as its underlying error.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Message: message, Kind: kind, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether err is an *Error with the same Kind, mirroring the
// golibs/errors convention of shallow kind comparison used elsewhere in the
// teacher's error classification code.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Annotatef wraps err with additional context, delegating to
// github.com/AdguardTeam/golibs/errors for the actual annotation so error
// chains format consistently with the rest of the dependency stack.
func Annotatef(err error, format string, args ...any) error {
	return errors.Annotate(err, format, args...)
}
