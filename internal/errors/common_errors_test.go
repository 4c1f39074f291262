package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "file not found error type", errType: ErrTypeFileNotFound, expected: "FILE_NOT_FOUND"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "schema mismatch error type", errType: ErrTypeSchemaMismatch, expected: "SCHEMA_MISMATCH"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeParsing, Message: "bad births value"},
			wantMessage: "[PARSING] bad births value",
		},
		{
			name:        "error with cause",
			appError:    &AppError{Type: ErrTypeStorage, Message: "write failed", Cause: fmt.Errorf("disk full")},
			wantMessage: "[STORAGE] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_IsSentinels(t *testing.T) {
	notFound := NewFileNotFoundError("/data/yob1999.txt", fs.ErrNotExist)
	parse := NewParsingError("births is not an integer", nil)
	schema := NewSchemaMismatchError("expected 3 columns, got 2")

	assert.True(t, errors.Is(notFound, ErrFileNotFound))
	assert.True(t, errors.Is(notFound, fs.ErrNotExist), "cause must stay reachable")
	assert.False(t, errors.Is(notFound, ErrParse))

	assert.True(t, errors.Is(parse, ErrParse))
	assert.False(t, errors.Is(parse, ErrSchemaMismatch))

	assert.True(t, errors.Is(schema, ErrSchemaMismatch))
	assert.True(t, errors.Is(schema, ErrParse), "schema mismatch is a parse error subtype")

	wrapped := fmt.Errorf("loading 1999: %w", parse)
	assert.True(t, errors.Is(wrapped, ErrParse))
}

func TestAppError_IsDistinctInstances(t *testing.T) {
	a := NewParsingError("a", nil)
	b := NewParsingError("b", nil)

	assert.False(t, errors.Is(a, b))
	assert.True(t, errors.Is(a, a))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad row", nil).
		WithContext(ContextPath, "/tmp/yob2020.txt").
		WithContext(ContextLine, 4)

	require.NotNil(t, err.Context)
	assert.Equal(t, "/tmp/yob2020.txt", err.Path())
	assert.Equal(t, 4, err.Context[ContextLine])

	var empty AppError
	assert.Equal(t, "", empty.Path())
	empty.WithContext("k", "v")
	assert.Equal(t, "v", empty.Context["k"])
}

func TestAppError_As(t *testing.T) {
	err := fmt.Errorf("load: %w", NewFileNotFoundError("/x/yob2001.txt", nil))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeFileNotFound, appErr.Type)
	assert.Equal(t, "/x/yob2001.txt", appErr.Path())
}
