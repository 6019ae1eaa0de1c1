package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"

	// Validation errors
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrCodeInvalidImage     ErrorCode = "INVALID_IMAGE"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeConflict      ErrorCode = "CONFLICT"

	// Throttling errors
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeFileTooLarge ErrorCode = "FILE_TOO_LARGE"

	// Server errors
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrCodeMailError          ErrorCode = "MAIL_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new API error
func NewAPIError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeUnauthorized, ErrCodeInvalidToken, ErrCodeTokenExpired:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeMissingParameter, ErrCodeInvalidImage:
		return http.StatusBadRequest
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeInternal, ErrCodeDatabaseError, ErrCodeMailError:
		return http.StatusInternalServerError
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError sends a standardized error response
func RespondError(c echo.Context, err *APIError) error {
	return c.JSON(err.HTTPStatus(), map[string]interface{}{
		"error":   err.Message,
		"code":    err.Code,
		"details": err.Details,
	})
}

// Common error constructors for convenience

// ErrUnauthorized returns an unauthorized error
func ErrUnauthorized(message string) *APIError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAPIError(ErrCodeUnauthorized, message)
}

// ErrForbidden returns a forbidden error
func ErrForbidden(message string) *APIError {
	if message == "" {
		message = "Access denied"
	}
	return NewAPIError(ErrCodeForbidden, message)
}

// ErrInvalidToken returns an invalid token error
func ErrInvalidToken(message string) *APIError {
	if message == "" {
		message = "Could not validate credentials"
	}
	return NewAPIError(ErrCodeInvalidToken, message)
}

// ErrNotFound returns a not found error
func ErrNotFound(resource string) *APIError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAPIError(ErrCodeNotFound, message)
}

// ErrBadRequest returns a bad request error
func ErrBadRequest(message string) *APIError {
	if message == "" {
		message = "Invalid request"
	}
	return NewAPIError(ErrCodeBadRequest, message)
}

// ErrAlreadyExists returns an already exists error
func ErrAlreadyExists(message string) *APIError {
	if message == "" {
		message = "Resource already exists"
	}
	return NewAPIError(ErrCodeAlreadyExists, message)
}

// ErrValidation returns a validation error with field details
func ErrValidation(details interface{}) *APIError {
	return NewAPIError(ErrCodeValidationFailed, "Validation failed").WithDetails(details)
}

// ErrRateLimited returns a rate limit exceeded error
func ErrRateLimited() *APIError {
	return NewAPIError(ErrCodeRateLimited, "Too many requests. Try again later")
}

// ErrInternal returns an internal server error
func ErrInternal(message string) *APIError {
	if message == "" {
		message = "Internal server error"
	}
	return NewAPIError(ErrCodeInternal, message)
}

// ErrMissingParameter returns a missing parameter error
func ErrMissingParameter(param string) *APIError {
	return NewAPIError(ErrCodeMissingParameter, fmt.Sprintf("Missing required parameter: %s", param))
}

// GetClaims extracts JWT claims from the context
// Returns nil if no claims are present
func GetClaims(c echo.Context) *JWTClaims {
	claims, ok := c.Get("user").(*JWTClaims)
	if !ok || claims == nil {
		return nil
	}
	return claims
}

// RequireClaims extracts JWT claims and returns an error if not authenticated
func RequireClaims(c echo.Context) (*JWTClaims, error) {
	claims := GetClaims(c)
	if claims == nil {
		return nil, RespondError(c, ErrUnauthorized(""))
	}
	return claims, nil
}

// RequireAdmin checks if the user has the admin role and returns claims
func RequireAdmin(c echo.Context) (*JWTClaims, error) {
	claims := GetClaims(c)
	if claims == nil {
		return nil, RespondError(c, ErrUnauthorized(""))
	}
	if claims.Role != RoleAdmin {
		return nil, RespondError(c, ErrForbidden("Permission denied"))
	}
	return claims, nil
}
