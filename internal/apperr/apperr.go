// Package apperr provides the typed domain errors services return. The HTTP
// layer maps each kind to a stable status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of a domain error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidRequest - malformed input or missing required fields.
	KindInvalidRequest
	// KindNotFound - a referenced deal/lead/customer/product is absent.
	KindNotFound
	// KindForbidden - role or ownership violation.
	KindForbidden
	// KindInvalidState - the target is not in the status the operation requires.
	KindInvalidState
	// KindUnauthorized - missing or invalid credentials.
	KindUnauthorized
	// KindInternal - unexpected failure; details stay server-side.
	KindInternal
)

// Error is a domain error with a Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status code this kind maps to. InvalidState maps to
// 400 like validation failures; callers learn the reason from the message.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap keeps the underlying error for logs while exposing only message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidRequest(message string) *Error { return New(KindInvalidRequest, message) }
func NotFound(message string) *Error       { return New(KindNotFound, message) }
func Forbidden(message string) *Error      { return New(KindForbidden, message) }
func InvalidState(message string) *Error   { return New(KindInvalidState, message) }
func Unauthorized(message string) *Error   { return New(KindUnauthorized, message) }
func Internal(message string) *Error       { return New(KindInternal, message) }

// HTTPStatus resolves the status for any error; untyped errors are treated
// as internal.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetKind extracts the kind, KindUnknown for untyped errors.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
