package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/guardpost/console/internal/config"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/types"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Request represents an HTTP request
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Client interface for making HTTP requests
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// ClientConfig holds configuration for the HTTP client
type ClientConfig struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is the number of requests per second; zero disables limiting
	RateLimit float64
	RateBurst int
}

// NewClientConfig builds a ClientConfig from the backend section of the configuration
func NewClientConfig(cfg *config.Configuration) ClientConfig {
	return ClientConfig{
		Timeout:      cfg.Backend.Timeout,
		RetryMax:     cfg.Backend.RetryMax,
		RetryWaitMin: cfg.Backend.RetryWaitMin,
		RetryWaitMax: cfg.Backend.RetryWaitMax,
		RateLimit:    cfg.Backend.RateLimit,
		RateBurst:    cfg.Backend.RateBurst,
	}
}

// DefaultClient implements the Client interface on top of a retrying
// transport and an outbound rate limiter
type DefaultClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

type retryKey struct{}

// NewDefaultClient creates a new DefaultClient
func NewDefaultClient(cfg ClientConfig, log *logger.Logger) Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if log != nil {
		rc.Logger = &leveledLogger{log: log}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &DefaultClient{
		client:  rc,
		limiter: limiter,
	}
}

// Send makes an HTTP request and returns the response. Requests that are safe
// to repeat are retried on connection errors and 5xx responses; a POST is
// only retried when it carries an idempotency key.
func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, ierr.WithError(err).
				WithHint("The request was cancelled before it could be sent").
				Mark(ierr.ErrHTTPClient)
		}
	}

	ctx = context.WithValue(ctx, retryKey{}, isRetryable(req))

	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrHTTPClient)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The billing backend could not be reached").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The billing backend response could not be read").
			Mark(ierr.ErrHTTPClient)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	if resp.StatusCode >= 400 {
		return nil, NewError(resp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    headers,
	}, nil
}

func isRetryable(req *Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	_, ok := req.Headers[types.HeaderIdempotencyKey]
	return ok
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if retry, ok := ctx.Value(retryKey{}).(bool); ok && !retry {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// leveledLogger adapts the zap sugared logger to retryablehttp's LeveledLogger
type leveledLogger struct {
	log *logger.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnw(msg, keysAndValues...)
}
