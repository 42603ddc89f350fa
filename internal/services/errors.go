package services

import (
	"errors"
	"fmt"
)

// Kind classifies service errors so callers can choose a response.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	// KindWarning marks a rejected request that the user should simply be told about.
	KindWarning
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindWarning:
		return "warning"
	}
	return "internal"
}

// Error is the error type returned by every service.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Fields maps input field names to problems for validation errors.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	ErrCartEmpty          = &Error{Kind: KindWarning, Message: "Your cart is empty."}
	ErrAlreadyReviewed    = &Error{Kind: KindWarning, Message: "You have already reviewed this product."}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
)

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func validationError(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, nil, format, args...)
}

func notFound(err error, format string, args ...any) *Error {
	return newError(KindNotFound, err, format, args...)
}

func internal(err error, format string, args ...any) *Error {
	return newError(KindInternal, err, format, args...)
}
