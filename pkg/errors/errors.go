package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error for the HTTP boundary.
type ErrorCode int

const (
	ErrValidation ErrorCode = iota + 1000
	ErrUnauthorized
	ErrPermissionDenied
	ErrNotFound
	ErrConflict
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors
func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// PermissionDenied deliberately carries a generic message so responses never
// leak why a role or assignment check failed.
func PermissionDenied(err error) *AppError {
	return &AppError{
		Code:    ErrPermissionDenied,
		Message: "permission denied",
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// CodeOf returns the error code of err when it is (or wraps) an AppError,
// ErrInternal otherwise.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrNotFound
}

func IsPermissionDenied(err error) bool {
	return CodeOf(err) == ErrPermissionDenied
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrConflict
}
