package apperror

import (
	"net/http"

	"github.com/orbitel/oms/internal/domain"
)

// AppError is the wire representation of a failed request.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusConflict}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

// MapError translates a domain error into its HTTP representation. Storage
// errors and anything unrecognized come back as an opaque 500.
func MapError(err error) *AppError {
	switch {
	case domain.IsValidation(err):
		return NewBadRequest(err.Error())
	case domain.IsAuthorization(err):
		return NewForbidden(err.Error())
	case domain.IsNotFound(err):
		return NewNotFound(err.Error())
	case domain.IsConflict(err):
		return NewConflict(err.Error())
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
