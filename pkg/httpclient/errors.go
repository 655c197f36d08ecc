package httpclient

import (
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	apperrors "github.com/satjeet/ClinePythonDividis/pkg/errors"
)

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an *apperrors.AppError whose Message is the backend's own detail
// text, or empty when the body carries none. The backend reports errors in several shapes:
//
//	{"detail": "..."}                       authentication / permission errors
//	{"error": "..."}                        domain rule violations
//	{"error": {"code": "...", "message": "..."}}
//	{"username": ["..."], ...}              serializer field errors
//	{"non_field_errors": ["..."]}
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.Upstream(fmt.Errorf("status %d: read body: %w", resp.StatusCode, err))
	}

	return mapStatus(resp.StatusCode, DetailMessage(body))
}

// DetailMessage extracts the human-readable message from an error body.
// It returns "" when the body carries none.
func DetailMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return ""
	}

	for _, path := range []string{"detail", "error.message", "error", "message"} {
		if v := doc.Get(path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}

	if v := doc.Get("non_field_errors.0"); v.Exists() {
		return v.String()
	}

	var msg string
	doc.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.IsArray() && len(value.Array()) > 0:
			msg = key.String() + ": " + value.Array()[0].String()
		case value.Type == gjson.String:
			msg = key.String() + ": " + value.String()
		default:
			return true
		}
		return false
	})
	return msg
}

func mapStatus(status int, message string) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case status == http.StatusConflict:
		return apperrors.Conflict(message)
	case status == http.StatusServiceUnavailable:
		return &apperrors.AppError{Code: apperrors.CodeServiceUnavailable, Message: message, Status: status, Err: apperrors.ErrServiceUnavail}
	case status >= 500:
		// Any other backend failure surfaces as a bad gateway.
		return &apperrors.AppError{
			Code:    apperrors.CodeUpstreamError,
			Message: message,
			Status:  http.StatusBadGateway,
			Err:     fmt.Errorf("%w: status %d", apperrors.ErrUpstream, status),
		}
	default:
		return &apperrors.AppError{Code: "REQUEST_FAILED", Message: message, Status: status}
	}
}
