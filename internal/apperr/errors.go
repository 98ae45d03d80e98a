// Package apperr holds the error kinds shared by every layer and their HTTP mapping.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUploadFailed    = errors.New("upload failed")
	ErrTransient       = errors.New("transient")
	ErrInternal        = errors.New("internal")
)

// Error carries a kind, a message that is safe to show to clients and an
// optional cause that is only logged.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind error, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

func Validation(msg string) error      { return New(ErrValidation, msg) }
func Unauthenticated(msg string) error { return New(ErrUnauthenticated, msg) }
func Forbidden(msg string) error       { return New(ErrForbidden, msg) }
func NotFound(msg string) error        { return New(ErrNotFound, msg) }
func Conflict(msg string) error        { return New(ErrConflict, msg) }

// FromContext turns an expired or cancelled context into a transient error.
func FromContext(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(ErrTransient, msg, err)
	}
	return err
}

// Status maps an error to the HTTP status rendered at the boundary.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUploadFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text. Unknown errors never leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && !errors.Is(e.Kind, ErrInternal) {
		return e.Msg
	}
	switch Status(err) {
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	case http.StatusBadGateway:
		return "asset storage failed"
	}
	return "internal server error"
}
