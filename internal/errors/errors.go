// Package errors defines the application error taxonomy shared by the
// collectors, the refinement pipeline and the gold aggregator.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrTypeSourceNotFound       ErrorType = "SOURCE_NOT_FOUND"
	ErrTypeDataFormat           ErrorType = "DATA_FORMAT"
	ErrTypeUnsupportedIndicator ErrorType = "UNSUPPORTED_INDICATOR"
	ErrTypeTransformation       ErrorType = "TRANSFORMATION"
	ErrTypeStorage              ErrorType = "STORAGE"
	ErrTypeValidation           ErrorType = "VALIDATION"
	ErrTypeNetwork              ErrorType = "NETWORK"
	ErrTypeConfig               ErrorType = "CONFIG"
)

// AppError represents an application-specific error with its type,
// an optional cause and free-form context for logging.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Retryable reports whether the failure may succeed on a later attempt.
// Only storage and network failures qualify; transformation failures are
// deterministic and retrying them is pointless.
func (e *AppError) Retryable() bool {
	return e.Type == ErrTypeStorage || e.Type == ErrTypeNetwork
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper constructors for the error taxonomy

// NewSourceNotFoundError signals that no raw object exists for an indicator.
// This is a soft failure: logged and counted, never fatal for the batch.
func NewSourceNotFoundError(indicator string) *AppError {
	return NewAppError(ErrTypeSourceNotFound, fmt.Sprintf("no source data for indicator %s", indicator), nil)
}

// NewDataFormatError signals that a raw table could not be normalized.
func NewDataFormatError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataFormat, message, cause)
}

// NewUnsupportedIndicatorError signals that no transformation policy is
// registered for the indicator.
func NewUnsupportedIndicatorError(indicator string) *AppError {
	return NewAppError(ErrTypeUnsupportedIndicator, fmt.Sprintf("no policy registered for indicator %s", indicator), nil)
}

// NewTransformationError signals that a policy produced an empty or
// invalid result.
func NewTransformationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeTransformation, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates an advisory validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err (or anything it wraps) is an AppError of the
// given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Retryable reports whether err carries a retryable AppError. Plain errors
// are never retried.
func Retryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Retryable()
	}
	return false
}

// TypeOf returns the error type of err, or an empty string for plain errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
