package router

import (
	"errors"
	"net"
	"net/http"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/httpclient"
	"github.com/guardpost/console/internal/logger"
)

// shouldRetry reports whether a failed delivery is worth another attempt.
// Receiver throttling, gateway errors and timeouts are; anything the
// receiver or our own data rejected is not.
func shouldRetry(logger *logger.Logger, err error) bool {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			logger.Debugw("retrying due to HTTP error",
				"status_code", httpErr.StatusCode,
				"error", httpErr,
			)
			return true
		}
		logger.Debugw("non-retryable HTTP error",
			"status_code", httpErr.StatusCode,
			"error", httpErr,
		)
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	if ierr.IsValidation(err) ||
		ierr.IsNotFound(err) ||
		ierr.IsInvalidOperation(err) {
		return false
	}

	return true
}
