// Package errors provides the unified error type and factory functions for the
// CaseClock engine.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier for structured error
// information, enabling consistent HTTP responses, logging, and monitoring.
//
// The engine never suppresses an error to produce a best-guess deadline or
// status: an incorrect "within SLA" reading is worse than a visible failure.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError — the canonical engine error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout CaseClock.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeUnknownStage, "stage cpn not in complaint pipeline")
//	return errors.Wrap(storeErr, errors.ErrCodeDatabaseError, "failed to load case")
//	return errors.InvalidDate("createdAt is required").WithDetail("case=" + id)
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error, suitable
	// for inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (case IDs, offending values, etc.)
	// that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError.
	Cause error

	// Stack contains the formatted call-stack captured at the point of error
	// creation.  It is intentionally not included in Error() output; callers
	// that need it (e.g. logging middleware) inspect the field directly.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
// A call-stack snapshot is captured automatically.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline.
// When err is already an *AppError and code is ErrCodeUnknown the original
// code is preserved, preventing loss of the domain classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == ErrCodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.  It is the idiomatic way to check domain-specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeInvalidTransition) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain.  If no *AppError is present, ErrCodeUnknown is returned.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeUnknown
}

// GetMessage extracts the caller-facing Message from the first *AppError in
// err's chain, without the bracketed code or the Detail suffix that
// Error() carries.  Falls back to err.Error() for plain errors.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories for the engine's failure taxonomy
// ─────────────────────────────────────────────────────────────────────────────

// InvalidDate constructs an ErrCodeInvalidDate AppError.  Used wherever a
// timestamp is unparseable or missing; the engine never defaults a bad date
// to "now" or epoch, because a silent default could hide a legally
// significant case as "deadline is today".
func InvalidDate(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidDate,
		Message: message,
		Stack:   captureStack(1),
	}
}

// UnknownCategory constructs an ErrCodeUnknownCategory AppError.
func UnknownCategory(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownCategory,
		Message: message,
		Stack:   captureStack(1),
	}
}

// UnknownClassifier constructs an ErrCodeUnknownClassifier AppError.
func UnknownClassifier(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownClassifier,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidTransition constructs an ErrCodeInvalidTransition AppError.
func InvalidTransition(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTransition,
		Message: message,
		Stack:   captureStack(1),
	}
}

// UnknownStage constructs an ErrCodeUnknownStage AppError.  A persisted stage
// value outside its category's pipeline is a data-integrity signal and is
// surfaced, never clamped to the nearest valid stage.
func UnknownStage(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownStage,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NoPipeline constructs an ErrCodeNoPipeline AppError for categories whose
// progress is tracked by deadlines rather than escalation stages.
func NoPipeline(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNoPipeline,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NotFound constructs an ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs an ErrCodeBadRequest AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs an ErrCodeInternal AppError.  Use for unexpected
// failures where no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}
