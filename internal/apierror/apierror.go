package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure and determines the HTTP status it maps to.
type Kind int

const (
	// KindServer covers persistence or upstream media-store failures.
	KindServer Kind = iota
	// KindBadRequest covers malformed or missing input, including
	// self-referential actions such as subscribing to oneself.
	KindBadRequest
	// KindUnauthorized covers missing, invalid, expired or replayed
	// credentials.
	KindUnauthorized
	// KindForbidden covers authenticated but unentitled callers. Reserved.
	KindForbidden
	// KindNotFound covers absent identities or targets.
	KindNotFound
	// KindConflict covers duplicate unique fields on registration.
	KindConflict
)

// Error is the closed error type every handler failure is expressed as.
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

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest builds a 400 error.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a 401 error.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a 403 error.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a 404 error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a 409 error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Server builds a 500 error wrapping the underlying cause.
func Server(err error, format string, args ...any) *Error {
	return &Error{Kind: KindServer, Message: fmt.Sprintf(format, args...), Err: err}
}

// From classifies an arbitrary error. Errors already carrying a Kind pass
// through unchanged; everything else becomes a ServerError with the
// message surfaced.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Kind: KindServer, Message: err.Error(), Err: err}
}
