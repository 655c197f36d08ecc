// Package errors defines the error values shared by the API client, the
// stores and the dashboard server.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is checks. Every AppError built here wraps one.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrUpstream       = errors.New("upstream request failed")
	ErrNoToken        = errors.New("no bearer token held")
)

// Codes reported in the JSON error envelope.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeNoToken             = "NO_TOKEN"
)

// AppError is an error with a code and HTTP status. Message is always safe
// to show to a user; for errors reported by the backend it is the backend's
// own detail text and may be empty.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	s := e.Code
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(code string, status int, cause error, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: cause}
}

func NotFound(message string) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, ErrNotFound, message)
}

func InvalidInput(message string) *AppError {
	return newError(CodeInvalidInput, http.StatusBadRequest, ErrInvalidInput, message)
}

func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, ErrUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, ErrForbidden, message)
}

func Conflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, ErrConflict, message)
}

// Internal hides err behind a generic message; err is kept for logs.
func Internal(err error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, fmt.Errorf("%w: %w", ErrInternal, err), "an internal error occurred")
}

// Upstream reports that the backend could not be reached at all. The message
// is generic and the transport error is kept for logs.
func Upstream(err error) *AppError {
	return newError(CodeUpstreamUnavailable, http.StatusBadGateway, fmt.Errorf("%w: %w", ErrUpstream, err), "the server could not be reached")
}

// NoToken is returned by operations that need a held bearer token.
func NoToken() *AppError {
	return newError(CodeNoToken, http.StatusUnauthorized, ErrNoToken, "not signed in")
}

var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrConflict, http.StatusConflict, CodeConflict},
	{ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{ErrNoToken, http.StatusUnauthorized, CodeNoToken},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{ErrForbidden, http.StatusForbidden, CodeForbidden},
	{ErrServiceUnavail, http.StatusServiceUnavailable, CodeServiceUnavailable},
	{ErrUpstream, http.StatusBadGateway, CodeUpstreamError},
}

// From returns err as an *AppError. Errors that only wrap a sentinel get the
// sentinel's code and status with err's text as message; anything else
// becomes Internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return newError(s.code, s.status, err, err.Error())
		}
	}
	return Internal(err)
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	return From(err).Status
}

// DisplayMessage returns the text a view should show for err: the backend's
// detail when the error carries one, otherwise fallback.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Code != CodeUpstreamUnavailable && appErr.Code != CodeInternal {
		return appErr.Message
	}
	return fallback
}
