package qbt

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorCode represents a specific error type for client-side handling
type ErrorCode string

const (
	// ErrorCodeNone indicates no error
	ErrorCodeNone ErrorCode = ""

	// ErrorCodeBadRequest indicates the server rejected the request (400)
	ErrorCodeBadRequest ErrorCode = "BAD_REQUEST"

	// ErrorCodeForbidden indicates a missing or expired session (403)
	ErrorCodeForbidden ErrorCode = "FORBIDDEN"

	// ErrorCodeNotFound indicates the target does not exist (404)
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeConflict indicates the request conflicts with server state (409)
	ErrorCodeConflict ErrorCode = "CONFLICT"

	// ErrorCodeUnsupportedMediaType indicates a rejected payload type (415)
	ErrorCodeUnsupportedMediaType ErrorCode = "UNSUPPORTED_MEDIA_TYPE"

	// ErrorCodeLoginFailed indicates the server did not accept the credentials
	ErrorCodeLoginFailed ErrorCode = "LOGIN_FAILED"

	// ErrorCodeAddTorrentFailed indicates the server did not accept an add request
	ErrorCodeAddTorrentFailed ErrorCode = "ADD_TORRENT_FAILED"

	// ErrorCodeClientClosed indicates the client was closed before the call
	ErrorCodeClientClosed ErrorCode = "CLIENT_CLOSED"

	// ErrorCodeAPI indicates an unclassified API failure
	ErrorCodeAPI ErrorCode = "API_ERROR"
)

// APIError is a structured error carrying the classification code, the
// HTTP status (0 for non-status failures) and the decoded response body.
type APIError struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	s := string(e.Code)
	if e.Status != 0 {
		s = fmt.Sprintf("%s (%d)", s, e.Status)
	}
	if e.Message != "" {
		s = fmt.Sprintf("%s: %s", s, e.Message)
	}
	if e.Err != nil {
		s = fmt.Sprintf("%s (%v)", s, e.Err)
	}
	return s
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError
func NewAPIError(code ErrorCode, status int, message string, err error) *APIError {
	return &APIError{
		Code:    code,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// statusErrorCode maps an HTTP status to its error classification.
// Unlisted statuses fall back to the generic API error.
func statusErrorCode(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return ErrorCodeBadRequest
	case http.StatusForbidden:
		return ErrorCodeForbidden
	case http.StatusNotFound:
		return ErrorCodeNotFound
	case http.StatusConflict:
		return ErrorCodeConflict
	case http.StatusUnsupportedMediaType:
		return ErrorCodeUnsupportedMediaType
	}
	return ErrorCodeAPI
}

// newStatusError builds the typed error for a non-200 response, carrying
// the decoded body as the message.
func newStatusError(status int, body string, cause error) *APIError {
	return NewAPIError(statusErrorCode(status), status, strings.TrimSpace(body), cause)
}

// isRetryableStatus reports the statuses worth another attempt.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// isRetryableConnError reports connection-level failures where the remote
// side closed or reset the connection before a response was produced.
func isRetryableConnError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "read" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "server closed idle connection") ||
		strings.Contains(msg, "broken pipe")
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ErrorCodeAPI
}

// IsNotFound reports whether err is a 404 classification.
func IsNotFound(err error) bool {
	return GetErrorCode(err) == ErrorCodeNotFound
}

// IsConflict reports whether err is a 409 classification.
func IsConflict(err error) bool {
	return GetErrorCode(err) == ErrorCodeConflict
}

// IsForbidden reports whether err is a 403 classification.
func IsForbidden(err error) bool {
	return GetErrorCode(err) == ErrorCodeForbidden
}

// IsLoginFailed reports whether err is a rejected-credentials failure.
func IsLoginFailed(err error) bool {
	return GetErrorCode(err) == ErrorCodeLoginFailed
}

// IsClosed reports whether err was raised because the client is closed.
func IsClosed(err error) bool {
	return GetErrorCode(err) == ErrorCodeClientClosed
}
