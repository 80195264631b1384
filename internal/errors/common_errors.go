package errors

import (
	"errors"
	"fmt"

	"salespulse/pkg/contracts/domain"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFormatDetection  ErrorType = "FORMAT_DETECTION"
	ErrTypeMissingColumn    ErrorType = "MISSING_COLUMN"
	ErrTypeColumnValidation ErrorType = "COLUMN_VALIDATION"
	ErrTypeEmptyResult      ErrorType = "EMPTY_RESULT"
	ErrTypeInvalidField     ErrorType = "INVALID_FIELD"
	ErrTypeNoDataset        ErrorType = "NO_DATASET"
	ErrTypeParsing          ErrorType = "PARSING"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeConfig           ErrorType = "CONFIG"
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

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
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

// TypeOf returns the ErrorType carried by err, or empty when err is not an
// AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Helper functions for the error taxonomy. Format and schema errors are
// fatal before any row processing; content errors carry the offending
// row/value so the caller can surface a precise message.

// NewFormatDetectionError signals that no encoding/delimiter candidate
// produced a usable decode of the upload.
func NewFormatDetectionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFormatDetection, message, cause)
}

// NewMissingColumnError signals that a required logical column is absent.
func NewMissingColumnError(fields []domain.Field) *AppError {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	err := NewAppError(ErrTypeMissingColumn, fmt.Sprintf("missing required columns: %v", names), nil)
	return err.WithContext("missing", names)
}

// NewColumnValidationError signals a column-level content failure with a
// human-readable reason.
func NewColumnValidationError(field domain.Field, reason string) *AppError {
	err := NewAppError(ErrTypeColumnValidation, reason, nil)
	return err.WithContext("field", string(field))
}

// NewEmptyResultError signals that every row was dropped during coercion; an
// entirely bad dataset is indistinguishable from no upload downstream.
func NewEmptyResultError(dropped int) *AppError {
	err := NewAppError(ErrTypeEmptyResult, fmt.Sprintf("no rows survived coercion (%d dropped)", dropped), nil)
	return err.WithContext("dropped_rows", dropped)
}

// NewInvalidFieldError signals a request for a field that was never present
// in the original upload.
func NewInvalidFieldError(field domain.Field) *AppError {
	err := NewAppError(ErrTypeInvalidField, fmt.Sprintf("field %q is not present in the dataset", field), nil)
	return err.WithContext("field", string(field))
}

// NewNoDatasetError signals that analytics were requested before any upload.
func NewNoDatasetError() *AppError {
	return NewAppError(ErrTypeNoDataset, "no dataset has been uploaded", nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
