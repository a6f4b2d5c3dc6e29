package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrGatewayResponse = errors.New("gateway response error")
	ErrRemoteStore     = errors.New("remote store error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInternal        = errors.New("internal server error")
)

// AppError carries a client-safe Message; Details and Err are for logs only.
type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewValidation(msg string) *AppError {
	return NewAppError(ErrValidation, msg, msg, nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrValidation, "Invalid input provided", details, err)
}

func NewGatewayResponse(msg, details string, err error) *AppError {
	return NewAppError(ErrGatewayResponse, msg, details, err)
}

func NewRemoteStore(details string, err error) *AppError {
	return NewAppError(ErrRemoteStore, "Failed to sync with the server. Please try again.", details, err)
}

func NewConfiguration(details string, err error) *AppError {
	return NewAppError(ErrConfiguration, "AI service is not configured. Please contact the administrator.", details, err)
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewConflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s conflict", resource)
	details := fmt.Sprintf("%s with %s '%s' already exists", resource, field, value)
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func NewUnauthorized(details string, err error) *AppError {
	return NewAppError(ErrUnauthorized, "Invalid credentials", details, err)
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Message returns the client-visible message for any error.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "An internal server error occurred"
}

func (e *AppError) ToJSON() gin.H {
	return gin.H{
		"success": false,
		"error":   e.Message,
	}
}
