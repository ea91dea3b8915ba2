package qbt

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusErrorCode(t *testing.T) {
	tests := []struct {
		status int
		code   ErrorCode
	}{
		{http.StatusBadRequest, ErrorCodeBadRequest},
		{http.StatusForbidden, ErrorCodeForbidden},
		{http.StatusNotFound, ErrorCodeNotFound},
		{http.StatusConflict, ErrorCodeConflict},
		{http.StatusUnsupportedMediaType, ErrorCodeUnsupportedMediaType},
		{http.StatusInternalServerError, ErrorCodeAPI},
		{http.StatusTeapot, ErrorCodeAPI},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.code, statusErrorCode(tt.status))
		})
	}
}

func TestNewStatusError(t *testing.T) {
	err := newStatusError(http.StatusConflict, "Torrent hash not found\n", nil)
	assert.Equal(t, ErrorCodeConflict, err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "Torrent hash not found", err.Message)
}

func TestAPIErrorMessage(t *testing.T) {
	err := NewAPIError(ErrorCodeNotFound, 404, "gone", nil)
	assert.Equal(t, "NOT_FOUND (404): gone", err.Error())

	cause := errors.New("boom")
	err = NewAPIError(ErrorCodeAPI, 0, "", cause)
	assert.Equal(t, "API_ERROR (boom)", err.Error())
	assert.Equal(t, cause, err.Unwrap())
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCodeNone, GetErrorCode(nil))
	assert.Equal(t, ErrorCodeAPI, GetErrorCode(errors.New("plain")))

	err := NewAPIError(ErrorCodeLoginFailed, 0, "Fails.", nil)
	assert.Equal(t, ErrorCodeLoginFailed, GetErrorCode(err))

	wrapped := errors.Wrap(err, "outer")
	assert.Equal(t, ErrorCodeLoginFailed, GetErrorCode(wrapped))
	assert.True(t, IsLoginFailed(wrapped))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(newStatusError(404, "", nil)))
	assert.True(t, IsConflict(newStatusError(409, "", nil)))
	assert.True(t, IsForbidden(newStatusError(403, "", nil)))
	assert.True(t, IsClosed(NewAPIError(ErrorCodeClientClosed, 0, "client is closed", nil)))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(newStatusError(409, "", nil)))
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, isRetryableStatus(http.StatusTooManyRequests))
	assert.True(t, isRetryableStatus(http.StatusBadGateway))
	assert.True(t, isRetryableStatus(http.StatusServiceUnavailable))

	assert.False(t, isRetryableStatus(http.StatusNotFound))
	assert.False(t, isRetryableStatus(http.StatusInternalServerError))
	assert.False(t, isRetryableStatus(http.StatusGatewayTimeout))
}

func TestIsRetryableConnError(t *testing.T) {
	require.False(t, isRetryableConnError(nil))

	assert.True(t, isRetryableConnError(syscall.ECONNRESET))
	assert.True(t, isRetryableConnError(syscall.EPIPE))
	assert.True(t, isRetryableConnError(io.ErrUnexpectedEOF))
	assert.True(t, isRetryableConnError(errors.Wrap(syscall.ECONNRESET, "dial")))
	assert.True(t, isRetryableConnError(&net.OpError{Op: "read", Err: errors.New("closed")}))
	assert.True(t, isRetryableConnError(errors.New("http: server closed idle connection")))

	assert.False(t, isRetryableConnError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableConnError(&net.OpError{Op: "dial", Err: errors.New("refused")}))
}
