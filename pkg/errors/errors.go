// Package errors defines the sentinel errors shared by the search server and
// an AppError wrapper that carries an HTTP status alongside the cause.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidID       = errors.New("invalid document id")
	ErrInvalidWord     = errors.New("invalid word")
	ErrMalformedQuery  = errors.New("malformed query")
	ErrUnknownDocument = errors.New("unknown document")
	ErrInvalidInput    = errors.New("invalid input")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Is reports whether any error in err's chain matches target. It lets callers
// use this package in place of the standard one.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrUnknownDocument):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidWord), errors.Is(err, ErrMalformedQuery), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
