// Package apperror holds the typed errors every service returns for
// foreseeable business rejections, and the mapping of those errors onto
// HTTP responses.
package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an Error for the transport layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindUnavailable
)

// Error is a rejected operation with a stable, machine readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	parent *Error
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether e was derived from target with WithMessage, so a
// rejection carrying a more specific message still matches its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	for p := e.parent; p != nil; p = p.parent {
		if p == t {
			return true
		}
	}
	return false
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg, parent: e}
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(msg string) *Error {
	return New(KindValidation, "ValidationError", msg)
}

func NotFound(code, msg string) *Error {
	return New(KindNotFound, code, msg)
}

func Unauthorized(code, msg string) *Error {
	return New(KindUnauthorized, code, msg)
}

func Forbidden(msg string) *Error {
	return New(KindForbidden, "Forbidden", msg)
}

func Conflict(code, msg string) *Error {
	return New(KindConflict, code, msg)
}

// ErrUnavailable is what callers see when the store could not be reached or
// failed mid-operation.
var ErrUnavailable = New(KindUnavailable, "ServiceUnavailable", "service temporarily unavailable")

// Status returns the HTTP status for kind.
func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusServiceUnavailable
	}
}

// As extracts the *Error from err. Untyped errors come back as
// ErrUnavailable with ok=false.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return ErrUnavailable, false
}
