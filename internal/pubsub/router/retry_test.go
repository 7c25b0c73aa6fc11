package router

import (
	"errors"
	"net/http"
	"testing"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/httpclient"
	"github.com/guardpost/console/internal/logger"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "receiver throttled", err: httpclient.NewError(http.StatusTooManyRequests, nil), want: true},
		{name: "receiver unavailable", err: httpclient.NewError(http.StatusServiceUnavailable, nil), want: true},
		{name: "receiver gateway timeout", err: httpclient.NewError(http.StatusGatewayTimeout, nil), want: true},
		{name: "receiver rejected payload", err: httpclient.NewError(http.StatusBadRequest, nil), want: false},
		{name: "receiver endpoint gone", err: httpclient.NewError(http.StatusGone, nil), want: false},
		{name: "network timeout", err: timeoutError{}, want: true},
		{name: "invoice no longer exists", err: ierr.NewError("missing").Mark(ierr.ErrNotFound), want: false},
		{name: "bad event data", err: ierr.NewError("bad").Mark(ierr.ErrInvalidOperation), want: false},
		{name: "validation", err: ierr.NewError("bad").Mark(ierr.ErrValidation), want: false},
		{name: "unknown", err: errors.New("boom"), want: true},
	}

	log := logger.NewNopLogger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRetry(log, tt.err))
		})
	}
}
