package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeInternal          = "INTERNAL_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnauthorized      = "UNAUTHORIZED"
)

var statusByCode = map[string]int{
	CodeNotFound:          http.StatusNotFound,
	CodeValidation:        http.StatusUnprocessableEntity,
	CodeConflict:          http.StatusConflict,
	CodeIllegalTransition: http.StatusConflict,
	CodeInternal:          http.StatusInternalServerError,
	CodeTimeout:           http.StatusGatewayTimeout,
	CodeInvalidInput:      http.StatusBadRequest,
	CodeUnauthorized:      http.StatusUnauthorized,
}

// AppError carries a stable code and HTTP status for the transport layer.
// The domain error stays reachable through Err.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode falls back to 500 for codes without a known status.
func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// New builds an AppError whose status is looked up from code.
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: statusByCode[code],
		Err:        cause,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error so errors.Is and errors.As still
// reach it through the AppError.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundWithID(resource, id string, cause error) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), cause).
		WithDetails(map[string]any{"resource": resource, "id": id})
}

func Validation(message string, details map[string]any) *AppError {
	return New(CodeValidation, message, nil).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, nil)
}

func Conflict(message string, cause error) *AppError {
	return New(CodeConflict, message, cause)
}

func IllegalTransition(message string, cause error) *AppError {
	return New(CodeIllegalTransition, message, cause)
}

func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, err)
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, message, nil)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// AsAppError returns the AppError inside err, or wraps err as an internal
// error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
