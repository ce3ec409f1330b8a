package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the domain error the API error was built from, so callers
// can still match it with errors.Is.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Wrap is New with an underlying cause.
func Wrap(cause error, code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status, cause: cause}
}

func BadRequest(message string, details string) *APIError {
	return New("BAD_REQUEST", message, details, http.StatusBadRequest)
}

func Unauthorized(cause error, message string) *APIError {
	return Wrap(cause, "UNAUTHORIZED", message, http.StatusUnauthorized)
}

func Forbidden(cause error, message string) *APIError {
	return Wrap(cause, "FORBIDDEN", message, http.StatusForbidden)
}

func Conflict(cause error, message string, details string) *APIError {
	err := Wrap(cause, "ALREADY_EXISTS", message, http.StatusConflict)
	err.Details = details
	return err
}
