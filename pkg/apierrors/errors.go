// Package apierrors classifies failures into the seven kinds named in
// spec.md §7, the way pkg/services/errors.go and pkg/config/errors.go
// classify errors in the teacher repo — one shared vocabulary instead of
// a wrapper type per package, since every component here (Store,
// Orchestrator, Quality Pipeline, Analyzer) needs to surface the same
// kinds to their callers.
package apierrors

import (
	"errors"
	"fmt"
)

// Kind is one of the seven error kinds from spec.md §7.
type Kind string

// Error kinds.
const (
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindValidation     Kind = "validation"
	KindStateViolation Kind = "state_violation"
	KindExternal       Kind = "external"
	KindInterrupted    Kind = "interrupted"
	KindCorrupt        Kind = "corrupt"
)

// Error is a classified, human-readable failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped error for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound, Conflict, Validation, StateViolation, External, Interrupted and
// Corrupt are convenience constructors for the seven kinds.
func NotFound(message string) *Error       { return New(KindNotFound, message) }
func Conflict(message string) *Error       { return New(KindConflict, message) }
func Validation(message string) *Error     { return New(KindValidation, message) }
func StateViolation(message string) *Error { return New(KindStateViolation, message) }
func External(message string, err error) *Error {
	return Wrap(KindExternal, message, err)
}
func Interrupted(message string) *Error { return New(KindInterrupted, message) }
func Corrupt(message string, err error) *Error {
	return Wrap(KindCorrupt, message, err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of err, or "" if it is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
