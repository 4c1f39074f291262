package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFileNotFound   ErrorType = "FILE_NOT_FOUND"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeSchemaMismatch ErrorType = "SCHEMA_MISMATCH"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// Context keys attached to ingestion errors
const (
	ContextPath   = "path"
	ContextYear   = "year"
	ContextLine   = "line"
	ContextColumn = "column"
)

// AppError represents an application-specific error
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

// Is matches the bare sentinels below by type. A schema mismatch is a kind of
// parse error, so it also matches ErrParse.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Message != "" || t.Cause != nil {
		return e == t
	}
	if e.Type == t.Type {
		return true
	}
	return e.Type == ErrTypeSchemaMismatch && t.Type == ErrTypeParsing
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Path returns the file path recorded in the error context, if any.
func (e *AppError) Path() string {
	if p, ok := e.Context[ContextPath].(string); ok {
		return p
	}
	return ""
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

// Sentinels for errors.Is checks.
var (
	ErrFileNotFound   = &AppError{Type: ErrTypeFileNotFound}
	ErrParse          = &AppError{Type: ErrTypeParsing}
	ErrSchemaMismatch = &AppError{Type: ErrTypeSchemaMismatch}
	ErrValidation     = &AppError{Type: ErrTypeValidation}
	ErrConfig         = &AppError{Type: ErrTypeConfig}
	ErrStorage        = &AppError{Type: ErrTypeStorage}
)

// Helper functions for common error types

// NewFileNotFoundError creates an error for an expected input file that is absent
func NewFileNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeFileNotFound, fmt.Sprintf("file not found: %s", path), cause).
		WithContext(ContextPath, path)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewSchemaMismatchError creates an error for rows that do not fit the fixed schema
func NewSchemaMismatchError(message string) *AppError {
	return NewAppError(ErrTypeSchemaMismatch, message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
