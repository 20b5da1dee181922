// Package errors provides structured error handling for the application
// so every command can report a code, a short message and the underlying cause.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes shared by the workflow, the collaborators and the CLI
const (
	// Input errors
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeInvalidConfig    ErrorCode = "INVALID_CONFIG"

	// Collaborator errors
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeExportFailed         ErrorCode = "EXPORT_FAILED"

	// Business logic errors
	CodeRecipeNotFound   ErrorCode = "RECIPE_NOT_FOUND"
	CodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	CodeMalformedOutput  ErrorCode = "MALFORMED_OUTPUT"
)

// AppError represents an application error with structured information
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ExitCode maps the error to a process exit code. Every failure surfaced by
// a command exits with 1; usage errors exit with 2.
func (e *AppError) ExitCode() int {
	switch e.Code {
	case CodeBadRequest:
		return 2
	default:
		return 1
	}
}

// HTTPStatus maps the error to the status returned by the JSON API
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound, CodeRecipeNotFound:
		return http.StatusNotFound
	case CodeExternalServiceError, CodeGenerationFailed, CodeMalformedOutput:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInvalidConfigError creates a configuration error
func NewInvalidConfigError(details string) *AppError {
	return NewAppError(CodeInvalidConfig, "Invalid configuration", details)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewExternalServiceError creates an external service error
func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(
		CodeExternalServiceError,
		"External service error",
		fmt.Sprintf("Failed to communicate with %s", service),
	).WithCause(cause).WithMetadata("service", service)
}

// NewExportError creates a document export error
func NewExportError(format string, cause error) *AppError {
	return NewAppError(
		CodeExportFailed,
		"Export failed",
		fmt.Sprintf("Failed to render %s document", format),
	).WithCause(cause).WithMetadata("format", format)
}

// NewRecipeNotFoundError creates a recipe not found error
func NewRecipeNotFoundError(recipeID uint) *AppError {
	return NewAppError(
		CodeRecipeNotFound,
		"Recipe not found",
		fmt.Sprintf("Recipe with ID %d does not exist", recipeID),
	).WithMetadata("recipe_id", recipeID)
}

// NewGenerationError creates a fatal recipe generation error
func NewGenerationError(provider string, cause error) *AppError {
	return NewAppError(
		CodeGenerationFailed,
		"Recipe generation failed",
		fmt.Sprintf("Provider %s did not return a recipe", provider),
	).WithCause(cause).WithMetadata("provider", provider)
}

// NewMalformedOutputError creates an error for structured output that does
// not decode into a recipe
func NewMalformedOutputError(provider string, cause error) *AppError {
	return NewAppError(
		CodeMalformedOutput,
		"Invalid json output",
		fmt.Sprintf("Provider %s returned a response that is not a valid recipe", provider),
	).WithCause(cause).WithMetadata("provider", provider)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// IsAppError reports whether err is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// Is checks if an error carries a specific error code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ExitCode returns the process exit code for any error
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.ExitCode()
	}
	return 1
}

// HTTPStatus returns the response status for any error
func HTTPStatus(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ValidationError is one rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors lists every rejected field of one struct
type ValidationErrors []ValidationError

// Error joins the field messages
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the names of the rejected fields
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, fe := range v {
		fields = append(fields, fe.Field)
	}
	return fields
}

// NewValidationErrors creates a validation error carrying the field list
// under the "fields" metadata key
func NewValidationErrors(fields ValidationErrors) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", fields.Error()).
		WithMetadata("fields", fields.Fields())
}
