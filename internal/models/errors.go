package models

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation_error"
	CodeInvalidPayment    ErrorCode = "invalid_payment"
	CodeInvalidTransition ErrorCode = "invalid_transition"
	CodeCapacityExceeded  ErrorCode = "capacity_exceeded"
	CodeInsufficientSeats ErrorCode = "insufficient_seats"
	CodeInvalidRelease    ErrorCode = "invalid_release"
	CodeTripNotPublished  ErrorCode = "trip_not_published"
	CodeIncompleteTrip    ErrorCode = "incomplete_trip"
	CodeNotFound          ErrorCode = "not_found"
	CodeForbidden         ErrorCode = "forbidden"
)

// Error - доменная ошибка. Две ошибки равны для errors.Is, если совпадают коды,
// поэтому сравнивать результат можно с переменными Err*.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrValidation        = &Error{Code: CodeValidation}
	ErrInvalidPayment    = &Error{Code: CodeInvalidPayment}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition}
	ErrCapacityExceeded  = &Error{Code: CodeCapacityExceeded}
	ErrInsufficientSeats = &Error{Code: CodeInsufficientSeats}
	ErrInvalidRelease    = &Error{Code: CodeInvalidRelease}
	ErrTripNotPublished  = &Error{Code: CodeTripNotPublished}
	ErrIncompleteTrip    = &Error{Code: CodeIncompleteTrip}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrForbidden         = &Error{Code: CodeForbidden}
)

// NewError создает доменную ошибку с форматированным сообщением
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound возвращает ошибку для неизвестного идентификатора
func NotFound(resource, id string) *Error {
	return NewError(CodeNotFound, "%s %q не найден(а)", resource, id)
}

// CodeOf возвращает код доменной ошибки или пустую строку
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
