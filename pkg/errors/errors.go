// Package errors provides structured error handling for the planner.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode represents an error code.
type ErrorCode string

const (
	// Generic codes
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// Planning codes
	CodeInvalidPreferences   ErrorCode = "INVALID_PREFERENCES"
	CodeUnitConversion       ErrorCode = "UNIT_CONVERSION_FAILED"
	CodePlanNotFound         ErrorCode = "PLAN_NOT_FOUND"
	CodeGenerationInProgress ErrorCode = "GENERATION_IN_PROGRESS"
)

// AppError represents an application error with structured information.
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithMetadata adds metadata to the error.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error.
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error.
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewInvalidPreferencesError reports a malformed or contradictory preference
// snapshot. Generation aborts before any selection work.
func NewInvalidPreferencesError(details string, cause error) *AppError {
	return NewAppError(
		CodeInvalidPreferences,
		"Preference snapshot is invalid",
		details,
	).WithCause(cause)
}

// NewUnitConversionError reports incompatible units on an ingredient line.
func NewUnitConversionError(ingredient string, cause error) *AppError {
	return NewAppError(
		CodeUnitConversion,
		"Ingredient units are incompatible",
		fmt.Sprintf("Cannot aggregate quantities for %q", ingredient),
	).WithMetadata("ingredient", ingredient).WithCause(cause)
}

// NewPlanNotFoundError creates a plan not found error.
func NewPlanNotFoundError(planID string) *AppError {
	return NewAppError(
		CodePlanNotFound,
		"Meal plan not found",
		fmt.Sprintf("Plan with ID %s does not exist", planID),
	).WithMetadata("plan_id", planID)
}

// Wrap wraps an error as an internal error if it's not already an AppError.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace.
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}
