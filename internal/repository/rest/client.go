package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/guardpost/console/internal/config"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/httpclient"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/sentry"
	"github.com/guardpost/console/internal/types"
)

// Client talks to the billing backend on behalf of the tenant in ctx. It is
// shared by every collaborator in this package.
type Client struct {
	http         httpclient.Client
	baseURL      string
	apiKey       string
	apiKeyHeader string
	log          *logger.Logger
	sentry       *sentry.Service
}

func NewClient(cfg *config.Configuration, http httpclient.Client, log *logger.Logger, sentry *sentry.Service) *Client {
	return &Client{
		http:         http,
		baseURL:      strings.TrimRight(cfg.Backend.BaseURL, "/"),
		apiKey:       cfg.Backend.APIKey,
		apiKeyHeader: cfg.Backend.APIKeyHeader,
		log:          log,
		sentry:       sentry,
	}
}

// call describes one backend request
type call struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

// errorEnvelope is the body the backend returns on failure
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// listResponse is the body of every backend list endpoint
type listResponse[T any] struct {
	Items []T `json:"items"`
}

// doJSON sends c and decodes a JSON response into out when out is not nil
func (cl *Client) doJSON(ctx context.Context, c call, out any) error {
	body, err := cl.do(ctx, c)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ierr.WithError(err).
			WithHint("The billing backend returned an unexpected response").
			WithReportableDetails(map[string]any{
				"operation": c.op,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}

func (cl *Client) do(ctx context.Context, c call) ([]byte, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	span, ctx := cl.sentry.StartBackendSpan(ctx, "backend."+c.op, map[string]interface{}{
		"method":    c.method,
		"path":      c.path,
		"tenant_id": types.GetTenantID(ctx),
	})

	req := &httpclient.Request{
		Method:  c.method,
		URL:     cl.url(c.path, c.query),
		Headers: cl.headers(ctx, c.headers),
	}
	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			sentry.FinishSpan(span, err)
			return nil, ierr.WithError(err).
				WithHint("The request could not be encoded").
				Mark(ierr.ErrSystem)
		}
		req.Body = payload
	}

	cl.log.Debugw("calling billing backend",
		"operation", c.op,
		"method", c.method,
		"path", c.path,
		"tenant_id", types.GetTenantID(ctx),
		"request_id", types.GetRequestID(ctx),
	)

	resp, err := cl.http.Send(ctx, req)
	if err != nil {
		err = cl.mapError(c, err)
		sentry.FinishSpan(span, err)
		return nil, err
	}

	sentry.FinishSpan(span, nil)
	return resp.Body, nil
}

func (cl *Client) url(path string, query url.Values) string {
	u := cl.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (cl *Client) headers(ctx context.Context, extra map[string]string) map[string]string {
	h := map[string]string{
		"Accept":             "application/json",
		types.HeaderTenantID: types.GetTenantID(ctx),
	}
	if cl.apiKey != "" {
		h[cl.apiKeyHeader] = cl.apiKey
	}
	if requestID := types.GetRequestID(ctx); requestID != "" {
		h[types.HeaderRequestID] = requestID
	}
	if userID := types.GetUserID(ctx); userID != "" {
		h[types.HeaderUserID] = userID
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// mapError turns a backend failure into the console's error taxonomy. The
// backend's error code picks the sentinel; the message becomes the hint.
// Every mapped error stays a remote error as well.
func (cl *Client) mapError(c call, err error) error {
	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		return err
	}

	var envelope errorEnvelope
	_ = json.Unmarshal(httpErr.Response, &envelope)

	hint := envelope.Error.Message
	if hint == "" {
		hint = fmt.Sprintf("The billing backend rejected the request (%d %s)",
			httpErr.StatusCode, http.StatusText(httpErr.StatusCode))
	}

	details := map[string]any{
		"operation":   c.op,
		"status_code": httpErr.StatusCode,
	}
	if envelope.Error.Code != "" {
		details["backend_code"] = envelope.Error.Code
	}

	cl.log.Warnw("billing backend rejected request",
		"operation", c.op,
		"status_code", httpErr.StatusCode,
		"backend_code", envelope.Error.Code,
	)

	return ierr.WithError(httpErr).
		WithHint(hint).
		WithReportableDetails(details).
		Mark(sentinelFor(envelope.Error.Code, httpErr.StatusCode))
}

func sentinelFor(code string, status int) error {
	if sentinel := ierr.FromCode(code); sentinel != nil {
		return sentinel
	}
	switch status {
	case http.StatusNotFound:
		return ierr.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ierr.ErrValidation
	case http.StatusConflict:
		return ierr.ErrAlreadyExists
	}
	return ierr.ErrHTTPClient
}

func escape(id string) string {
	return url.PathEscape(id)
}
