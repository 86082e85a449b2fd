package callable

import (
	"errors"
	"net/http"
	"strings"
)

// Code is a callable error code as clients see it, e.g. "permission-denied".
type Code string

const (
	Unauthenticated  Code = "unauthenticated"
	PermissionDenied Code = "permission-denied"
	InvalidArgument  Code = "invalid-argument"
	NotFound         Code = "not-found"
	Unknown          Code = "unknown"
	Internal         Code = "internal"
)

var httpStatus = map[Code]int{
	Unauthenticated:  http.StatusUnauthorized,
	PermissionDenied: http.StatusForbidden,
	InvalidArgument:  http.StatusBadRequest,
	NotFound:         http.StatusNotFound,
	Unknown:          http.StatusInternalServerError,
	Internal:         http.StatusInternalServerError,
}

// Status is the canonical wire name, e.g. "PERMISSION_DENIED".
func (c Code) Status() string {
	return strings.ToUpper(strings.ReplaceAll(string(c), "-", "_"))
}

func (c Code) HTTPStatus() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified failure returned to the calling client.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf returns the code of a classified error, Internal for anything else.
func CodeOf(err error) Code {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return Internal
}
