// Package errors implements the error taxonomy described by the core:
// Input, State, Timeout, Execution, and Backend errors, each carrying
// enough context (type, id, action, index) to locate the offending
// element.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind categorizes an AppError along the taxonomy the core mandates.
type Kind string

const (
	// KindInput covers malformed call arguments: unknown type, missing
	// id, ill-formed field definitions, "cannot map over non-array".
	KindInput Kind = "INPUT"

	// KindState covers illegal state transitions: already-exists on
	// create, not-found on update/delete, retry/cancel from a
	// terminal state that forbids it.
	KindState Kind = "STATE"

	// KindTimeout covers per-item forEach timeouts and dependency-wait
	// timeouts.
	KindTimeout Kind = "TIMEOUT"

	// KindExecution covers anything thrown inside a user callback or
	// durable-promise executor.
	KindExecution Kind = "EXECUTION"

	// KindBackend covers anything raised by a provider implementation,
	// surfaced verbatim and wrapped with context where helpful.
	KindBackend Kind = "BACKEND"
)

// AppError is the core's error value. It is always returned or
// wrapped, never a bare string, so callers can locate the offending
// element via Type/ID/Action/Index.
type AppError struct {
	Kind    Kind
	Message string
	Type    string // entity/action type, when applicable
	ID      string // entity/action id, when applicable
	Action  string // operation name, when applicable
	Index   int    // item index within a forEach/batch, when applicable
	HasIndex bool
	Cause   error
	Stack   string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Type != "" {
		msg += fmt.Sprintf(" (type=%s)", e.Type)
	}
	if e.ID != "" {
		msg += fmt.Sprintf(" (id=%s)", e.ID)
	}
	if e.Action != "" {
		msg += fmt.Sprintf(" (action=%s)", e.Action)
	}
	if e.HasIndex {
		msg += fmt.Sprintf(" (index=%d)", e.Index)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error { return e.Cause }

// WithType attaches the entity/action type the error concerns.
func (e *AppError) WithType(t string) *AppError { e.Type = t; return e }

// WithID attaches the entity/action id the error concerns.
func (e *AppError) WithID(id string) *AppError { e.ID = id; return e }

// WithAction attaches the operation name the error concerns.
func (e *AppError) WithAction(action string) *AppError { e.Action = action; return e }

// WithIndex attaches the item index (within a forEach/batch) the error concerns.
func (e *AppError) WithIndex(i int) *AppError { e.Index = i; e.HasIndex = true; return e }

// WithCause wraps an underlying error.
func (e *AppError) WithCause(cause error) *AppError { e.Cause = cause; return e }

func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

func newError(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Stack: captureStack()}
}

// NewInputError builds a KindInput error, e.g. an unknown type or an
// ill-formed field definition.
func NewInputError(message string) *AppError { return newError(KindInput, message) }

// NewNotMappableError is the typed "cannot map over non-array" error
// the deferred query raises when map is called on a resolved scalar.
func NewNotMappableError() *AppError {
	return NewInputError("cannot map over non-array")
}

// NewForEachArrayError is the typed error forEach raises when asked to
// iterate a non-array value.
func NewForEachArrayError() *AppError {
	return NewInputError("forEach requires array")
}

// NewAlreadyExistsError builds a KindState error for create of a
// duplicate (type, id).
func NewAlreadyExistsError(entityType, id string) *AppError {
	return newError(KindState, "already exists").WithType(entityType).WithID(id)
}

// NewNotFoundError builds a KindState error for update/delete of a
// missing (type, id).
func NewNotFoundError(entityType, id string) *AppError {
	return newError(KindState, "not found").WithType(entityType).WithID(id)
}

// NewIllegalTransitionError builds a KindState error for an Action
// lifecycle transition that is not on the permitted graph.
func NewIllegalTransitionError(action, from, to string) *AppError {
	return newError(KindState, fmt.Sprintf("illegal transition %s -> %s", from, to)).WithAction(action)
}

// NewTimeoutError builds a KindTimeout error for a per-item forEach
// deadline or a dependency-wait ceiling violation.
func NewTimeoutError(message string) *AppError { return newError(KindTimeout, message) }

// NewExecutionError wraps a panic/error raised inside a user callback
// or durable-promise executor.
func NewExecutionError(cause error) *AppError {
	return newError(KindExecution, "execution failed").WithCause(cause)
}

// NewBackendError wraps an error raised by a provider implementation.
func NewBackendError(cause error) *AppError {
	return newError(KindBackend, "backend error").WithCause(cause)
}

// Is supports errors.Is comparisons against errors produced by the
// constructors above (comparison is by Kind/Type/ID only; Action,
// Index and Message are ignored, matching the teacher's
// DomainError.Is pattern).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Type == t.Type && e.ID == t.ID
}

// AsAppError extracts an *AppError from err, if present anywhere in
// its chain.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
