// Package errors defines the error taxonomy shared by the glob core and wraps
// errors with stack traces.
package errors

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// ErrOperationCanceled is reported when a query stops because its context was
// canceled or its deadline expired.
var ErrOperationCanceled = errors.New("operation canceled")

// InvalidArgumentError reports a required argument that was absent.
type InvalidArgumentError struct {
	Name   string
	Reason string
}

func (e InvalidArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid argument %q: value is required", e.Name)
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// ValidationError reports a configuration that violates an invariant.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// EnumerationError is a filesystem fault raised during a walk that the
// inaccessible-entry policy did not cover.
type EnumerationError struct {
	Path string
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerating %s: %v", e.Path, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// canceledError carries both ErrOperationCanceled and the context cause.
type canceledError struct {
	cause error
}

func (e canceledError) Error() string {
	return fmt.Sprintf("%s: %v", ErrOperationCanceled, e.cause)
}

func (e canceledError) Unwrap() []error {
	return []error{ErrOperationCanceled, e.cause}
}

// NewInvalidArgument returns an InvalidArgumentError with a stack trace.
func NewInvalidArgument(name, reason string) error {
	return goerrors.Wrap(InvalidArgumentError{Name: name, Reason: reason}, 1)
}

// NewValidation returns a ValidationError with a stack trace.
func NewValidation(format string, args ...interface{}) error {
	return goerrors.Wrap(ValidationError{Reason: fmt.Sprintf(format, args...)}, 1)
}

// NewEnumeration returns an EnumerationError with a stack trace.
func NewEnumeration(path string, err error) error {
	return goerrors.Wrap(&EnumerationError{Path: path, Err: err}, 1)
}

// Canceled converts a context error into an error matching both
// ErrOperationCanceled and the original cause. Other errors are returned as is.
func Canceled(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrOperationCanceled) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return canceledError{cause: err}
	}
	return err
}

// IsCanceled reports whether err is a cancellation outcome.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrOperationCanceled)
}

// New creates an error with a stack trace.
func New(message string) error {
	return goerrors.Wrap(errors.New(message), 1)
}

// Errorf creates a new error and wraps in an Error type that contains the stack trace.
func Errorf(message string, args ...interface{}) error {
	return goerrors.Wrap(fmt.Errorf(message, args...), 1)
}

// WithStackTrace wraps the given error in an Error type that contains the stack trace. If the given error is nil,
// return nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}

	return goerrors.Wrap(err, 1)
}

// IsError returns true if actual is, or wraps, expected.
func IsError(actual error, expected error) bool {
	return goerrors.Is(actual, expected)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// ErrorStack returns the message together with the captured call stack, if any.
func ErrorStack(err error) string {
	if err == nil {
		return ""
	}

	var goErr *goerrors.Error
	if errors.As(err, &goErr) {
		return goErr.ErrorStack()
	}

	return err.Error()
}
