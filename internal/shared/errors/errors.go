package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the closed set of failure kinds the admin operations switch on.
type ErrorType string

const (
	// Recoverable outcomes reported by the remote service
	ErrorTypeNotFound      ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeConflict      ErrorType = "CONFLICT_ERROR"
	ErrorTypeOfferNotFound ErrorType = "OFFER_NOT_FOUND_ERROR"

	// Any other status the service reported
	ErrorTypeService ErrorType = "SERVICE_ERROR"

	// Client side failures
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeInfrastructure ErrorType = "INFRASTRUCTURE_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
)

// Common application errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource conflict")
	ErrOfferNotFound = errors.New("no offer linked to resource")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidPath   = errors.New("invalid resource path")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`

	// StatusCode and ActivityID are captured from service responses.
	StatusCode int    `json:"statusCode,omitempty"`
	ActivityID string `json:"activityId,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithResponse records the service status code and activity id.
func (e *AppError) WithResponse(statusCode int, activityID string) *AppError {
	e.StatusCode = statusCode
	e.ActivityID = activityID
	return e
}

// Common error constructors

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound).WithCause(ErrNotFound)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, message, http.StatusConflict).WithCause(ErrConflict)
}

// NewOfferNotFoundError reports that no throughput record is linked to resourceLink.
func NewOfferNotFoundError(resourceLink string) *AppError {
	return NewAppError(ErrorTypeOfferNotFound, fmt.Sprintf("no offer linked to %s", resourceLink), http.StatusNotFound).
		WithCause(ErrOfferNotFound).
		WithDetail("resource", resourceLink)
}

// NewServiceError creates an error for a service-reported failure other than not-found/conflict.
func NewServiceError(statusCode int, message string) *AppError {
	return NewAppError(ErrorTypeService, message, http.StatusBadGateway).WithResponse(statusCode, "")
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewInfrastructureError creates an infrastructure error
func NewInfrastructureError(message string) *AppError {
	return NewAppError(ErrorTypeInfrastructure, message, http.StatusInternalServerError)
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized).WithCause(ErrUnauthorized)
}

// FromStatus maps a service status code onto the closed error kinds.
func FromStatus(statusCode int, code, message string) *AppError {
	var e *AppError
	switch statusCode {
	case http.StatusNotFound:
		e = NewAppError(ErrorTypeNotFound, message, http.StatusNotFound).WithCause(ErrNotFound)
	case http.StatusConflict:
		e = NewAppError(ErrorTypeConflict, message, http.StatusConflict).WithCause(ErrConflict)
	default:
		e = NewServiceError(statusCode, message)
	}
	e.StatusCode = statusCode
	return e.WithCode(code)
}

// Helper functions for common error scenarios

// WrapError wraps an error with context
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInfrastructureError(message).WithCause(err)
}

// TypeOf returns the kind of err, or "" when err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if t := TypeOf(err); t != "" {
		return t == ErrorTypeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	if t := TypeOf(err); t != "" {
		return t == ErrorTypeConflict
	}
	return errors.Is(err, ErrConflict)
}

// IsOfferNotFound checks if an error reports a missing throughput record
func IsOfferNotFound(err error) bool {
	if t := TypeOf(err); t != "" {
		return t == ErrorTypeOfferNotFound
	}
	return errors.Is(err, ErrOfferNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsServiceFailure reports whether err was produced by the remote service,
// whatever its status.
func IsServiceFailure(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeNotFound, ErrorTypeConflict, ErrorTypeOfferNotFound, ErrorTypeService:
		return true
	}
	return false
}
