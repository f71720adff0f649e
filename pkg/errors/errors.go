package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeConfiguration indicates missing or invalid credentials/config
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"

	// ErrorTypeInvalidArgument indicates a tool call missing a required argument
	ErrorTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"

	// ErrorTypeDirectoryNotFound indicates the import directory does not exist
	ErrorTypeDirectoryNotFound ErrorType = "DIRECTORY_NOT_FOUND"

	// ErrorTypePatientInfoMissing indicates no file yielded patient header fields
	ErrorTypePatientInfoMissing ErrorType = "PATIENT_INFO_MISSING"

	// ErrorTypeAuth indicates token construction failed
	ErrorTypeAuth ErrorType = "AUTH"

	// ErrorTypeQueryTranslation indicates the upstream NL-to-SQL call failed
	ErrorTypeQueryTranslation ErrorType = "QUERY_TRANSLATION"

	// ErrorTypeNoSQLGenerated indicates the analyst responded without any SQL
	ErrorTypeNoSQLGenerated ErrorType = "NO_SQL_GENERATED"

	// ErrorTypeExecution indicates SQL execution failed in the warehouse
	ErrorTypeExecution ErrorType = "EXECUTION"

	// ErrorTypeSerialization indicates a value could not be made transport-safe
	ErrorTypeSerialization ErrorType = "SERIALIZATION"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error

	// StatusCode carries the upstream HTTP status for query translation
	// failures; zero otherwise.
	StatusCode int
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind returns the ErrorType of err if it is an AppError, or
// ErrorTypeExecution for anything else.
func Kind(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeExecution
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
		Err:     err,
	}
}

// NewDirectoryNotFoundError creates a new directory not found error
func NewDirectoryNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDirectoryNotFound,
		Message: message,
	}
}

// NewPatientInfoMissingError creates a new patient info missing error
func NewPatientInfoMissingError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypePatientInfoMissing,
		Message: message,
	}
}

// NewAuthError creates a new auth error
func NewAuthError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAuth,
		Message: message,
		Err:     err,
	}
}

// NewQueryTranslationError creates a new query translation error carrying
// the upstream status code and response body for diagnosis
func NewQueryTranslationError(message string, statusCode int, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeQueryTranslation,
		Message:    message,
		Err:        err,
		StatusCode: statusCode,
	}
}

// NewNoSQLGeneratedError creates a new no-SQL-generated error
func NewNoSQLGeneratedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNoSQLGenerated,
		Message: message,
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExecution,
		Message: message,
		Err:     err,
	}
}

// NewSerializationError creates a new serialization error
func NewSerializationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSerialization,
		Message: message,
		Err:     err,
	}
}
