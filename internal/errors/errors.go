// Package errors provides a unified interface for error handling,
// combining stdlib errors with pkg/errors for stack trace support.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Wrap returns an error annotating err with a stack trace and the supplied message.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

// Wrapf returns an error annotating err with a stack trace and the format specifier.
func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack annotates err with a stack trace at the point WithStack was called.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// Errorf formats according to a format specifier and returns the string as a
// value that satisfies error with stack trace.
func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

// Because attaches cause to kind so that both match errors.Is, while errors.As
// resolves to kind first. The resulting message is "op: kind: cause".
func Because(kind error, op string, cause error) error {
	if cause == nil {
		return pkgerrors.Wrap(kind, op)
	}

	return pkgerrors.WithStack(&joined{op: op, kind: kind, cause: cause})
}

type joined struct {
	op    string
	kind  error
	cause error
}

func (e *joined) Error() string {
	return e.op + ": " + e.kind.Error() + ": " + e.cause.Error()
}

func (e *joined) Unwrap() []error {
	return []error{e.kind, e.cause}
}
