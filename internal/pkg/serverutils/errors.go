package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is a failure with a user-facing message and the HTTP status it
// maps to. Data is copied into the error envelope.
type AppError struct {
	Code    int
	Message string
	Data    fiber.Map
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithData returns a copy carrying extra envelope data.
func (e *AppError) WithData(data fiber.Map) *AppError {
	cp := *e
	cp.Data = data
	return &cp
}

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewBadRequest(message string) *AppError {
	return NewAppError(fiber.StatusBadRequest, message)
}

func NewUnauthorized(message string) *AppError {
	return NewAppError(fiber.StatusUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return NewAppError(fiber.StatusForbidden, message)
}

func NewNotFound(message string) *AppError {
	return NewAppError(fiber.StatusNotFound, message)
}

func NewConflict(message string) *AppError {
	return NewAppError(fiber.StatusConflict, message)
}

func NewBadGateway(message string) *AppError {
	return NewAppError(fiber.StatusBadGateway, message)
}

// NewInternal wraps err; only message is shown to the caller.
func NewInternal(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusInternalServerError, Message: message, Err: err}
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
