package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeDataUnavailable    = "DATA_UNAVAILABLE"
	CodeGateNotSatisfied   = "GATE_NOT_SATISFIED"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// DataUnavailable marks a transient read failure; callers may retry.
func DataUnavailable(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeDataUnavailable, err)
}

// GateNotSatisfied marks a policy violation the user can correct
// (e.g. the watch timer has not elapsed yet).
func GateNotSatisfied(err error) *Error {
	return New(http.StatusUnprocessableEntity, CodeGateNotSatisfied, err)
}

// PersistenceFailure marks a failed write. Never auto-retried.
func PersistenceFailure(err error) *Error {
	return New(http.StatusInternalServerError, CodePersistenceFailure, err)
}

func NotAuthenticated(err error) *Error {
	return New(http.StatusUnauthorized, CodeNotAuthenticated, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func InvalidArgument(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidArgument, err)
}

// HasCode reports whether err (or anything it wraps) is an *Error
// carrying the given code.
func HasCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// StatusOf resolves the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf resolves the taxonomy code for err, empty when untyped.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
