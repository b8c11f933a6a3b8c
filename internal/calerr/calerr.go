// Package calerr defines the typed, caller-visible error taxonomy for the
// calendar core. Every failure the model can signal is one of the sentinel
// values below (optionally wrapping a cause); the presentation layer is
// responsible for turning them into user-facing text.
package calerr

import (
	"errors"
	"fmt"
)

// Error is a typed domain error. Two Errors compare equal under errors.Is
// when their Codes match, so sentinel values double as match targets.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by code, so `errors.Is(err, calerr.ErrConflictingEvent)` works
// for any wrapped or message-overridden instance.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a cause to a sentinel, keeping its code.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Err: err}
}

// Wrapf attaches a formatted message to a sentinel's code.
func Wrapf(sentinel *Error, format string, args ...any) *Error {
	return &Error{Code: sentinel.Code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for every recoverable condition the core can report.
var (
	ErrInvalidEvent      = New("INVALID_EVENT", "invalid event parameters")
	ErrConflictingEvent  = New("CONFLICTING_EVENT", "event conflicts with an existing event")
	ErrEventNotFound     = New("EVENT_NOT_FOUND", "event not found")
	ErrCalendarNotFound  = New("CALENDAR_NOT_FOUND", "calendar not found")
	ErrDuplicateCalendar = New("DUPLICATE_CALENDAR", "calendar already exists")
	ErrInvalidTimezone   = New("INVALID_TIMEZONE", "invalid timezone identifier")
	ErrInvalidName       = New("INVALID_NAME", "invalid calendar name")
	ErrExport            = New("EXPORT_FAILED", "export failed")
)

// FromError normalises any error into an *Error. Unknown errors are wrapped
// as invalid-event failures so the command layer always has a code to show.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(ErrInvalidEvent, err)
}
