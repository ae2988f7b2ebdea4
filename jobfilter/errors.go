package jobfilter

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrIO               ErrorKind = "io"
	ErrSQL              ErrorKind = "sql"
	ErrSchema           ErrorKind = "schema"
	ErrConfig           ErrorKind = "config"
	ErrInvalidInput     ErrorKind = "invalid_input"
	ErrNotFound         ErrorKind = "not_found"
	ErrUnknownAttribute ErrorKind = "unknown_attribute"
)

// Error is returned by the store. Filter compilation never fails; only the
// storage and seeding paths produce errors.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func InvalidInput(field, msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Field: field, Message: msg}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
