package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Operation failures wrap exactly one of these so callers can
// branch with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate")
	ErrFetch      = errors.New("fetch failed")
	ErrWrite      = errors.New("write failed")
)

// Error is an operation failure whose Message is safe to show to a user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports a missing collection, link, month, day or checklist item.
func NotFoundf(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

// Validationf reports malformed input detected before any write.
func Validationf(format string, args ...any) error { return newError(ErrValidation, format, args...) }

// Duplicatef reports a name collision.
func Duplicatef(format string, args ...any) error { return newError(ErrDuplicate, format, args...) }

// Fetchf reports a failed store read.
func Fetchf(format string, args ...any) error { return newError(ErrFetch, format, args...) }

// Writef reports a failed store write.
func Writef(format string, args ...any) error { return newError(ErrWrite, format, args...) }
