// Package apperrors defines the error taxonomy shared by every component of
// the core. Errors carry a machine-readable code, a human-readable message
// and an operation chain; the boundary layer maps codes onto HTTP statuses.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EInternal     = "internal error"
	ENotFound     = "not found"
	EConflict     = "conflict"     // state machine or invariant violation
	EInvalid      = "invalid"      // malformed input payload
	EUnauthorized = "unauthorized" // credential or permission failure
	EUnavailable  = "unavailable"  // storage or dependency down, fatal
)

// Error is the structured error returned by core operations.
//
// Code targets automated handling (HTTP mapping, retry decisions), Msg is
// shown to operators and users, Op and Err chain the logical call stack.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		fmt.Fprintf(&b, "%s: ", e.Op)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		if e.Code != "" {
			fmt.Fprintf(&b, "<%s>", e.Code)
			if e.Msg != "" {
				b.WriteString(" ")
			}
		}
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode walks the error chain and returns the first code it finds,
// EInternal for non-nil errors without one, and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		if e.Err == nil {
			break
		}
		err = e.Err
	}
	return EInternal
}

// ErrorMessage returns the deepest message in the chain, or a generic one.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Err == nil {
			break
		}
		err = e.Err
	}
	return "an internal error has occurred"
}

func NotFound(op, msg string) *Error {
	return &Error{Code: ENotFound, Op: op, Msg: msg}
}

func Conflict(op, msg string) *Error {
	return &Error{Code: EConflict, Op: op, Msg: msg}
}

func Invalid(op, msg string) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: msg}
}

func Invalidf(op, format string, args ...any) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized returns the uniform credential failure. Callers must not vary
// the message by cause; the same shape is returned for an unknown email, an
// inactive account and a wrong password.
func Unauthorized(op string) *Error {
	return &Error{Code: EUnauthorized, Op: op, Msg: "invalid credentials"}
}

// Unavailable wraps a storage or dependency failure. These are fatal for the
// current operation and must propagate unchanged.
func Unavailable(op string, err error) *Error {
	return &Error{Code: EUnavailable, Op: op, Msg: "storage unavailable", Err: err}
}

func Internal(op string, err error) *Error {
	return &Error{Code: EInternal, Op: op, Err: err}
}
