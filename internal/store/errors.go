package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrRestricted       = errors.New("delete restricted")
	ErrBadCredentials   = errors.New("incorrect email or password")
	ErrLocked           = errors.New("account temporarily locked")
	ErrInactiveUser     = errors.New("inactive user")
)

// ValidationError names the offending field of a payload.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Msg: err.Error()}
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ReferenceError is a foreign id in a payload that does not resolve under the
// caller.
type ReferenceError struct {
	Field string
	ID    uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d not found or doesn't belong to user", e.Field, e.ID)
}

func (e *ReferenceError) Unwrap() error { return ErrInvalidReference }
