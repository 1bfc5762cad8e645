package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel error kinds. Every service failure unwraps to exactly one of these
// (or to none, which the delivery layer reports as an internal error).
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// Specific sentinels that still classify under one of the kinds above.
var (
	ErrDuplicateEmail     = &Error{Kind: ErrConflict, Message: "email already in use"}
	ErrInvalidCredentials = &Error{Kind: ErrUnauthorized, Message: "invalid credentials"}
	// ErrDuplicateToken is returned by the participant store when a generated
	// check-in token collides with an existing one.
	ErrDuplicateToken = errors.New("duplicate check-in token")
)

// Error pairs an error kind with a human readable message.
type Error struct {
	Kind    error
	Message string
}

// NewError builds an *Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// AlreadyCheckedInError is returned when a check-in token is presented a second time.
type AlreadyCheckedInError struct {
	CheckedInAt time.Time
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("participant already checked in at %s", e.CheckedInAt.UTC().Format(time.RFC3339))
}

func (e *AlreadyCheckedInError) Unwrap() error { return ErrConflict }
