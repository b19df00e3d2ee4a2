// Package apperror defines the error taxonomy shared by the lifecycle engines
// and the transport layer.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindValidation       Kind = "VALIDATION"
	KindInternal         Kind = "INTERNAL"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// Error is a classified error carrying a human-readable message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	// ErrNotFound matches any error of kind NotFound
	ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}

	// ErrPermissionDenied matches any error of kind PermissionDenied
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied, Message: "permission denied"}

	// ErrValidation matches any error of kind Validation
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}

	// ErrInternal matches any error of kind Internal
	ErrInternal = &Error{Kind: KindInternal, Message: "internal error"}
)

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
// It lets errors.Is(err, ErrNotFound) match every NotFound error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NotFound creates a NotFound error
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// PermissionDenied creates a PermissionDenied error
func PermissionDenied(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a Validation error
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a storage or infrastructure failure
func Internal(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err. Errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
// Internal errors never expose their cause.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Kind == KindInternal {
			return ErrInternal.Message
		}
		return appErr.Message
	}
	return ErrInternal.Message
}

// AsInternal passes taxonomy errors through and wraps everything else as Internal
func AsInternal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(err, "%s", msg)
}
