package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyServer fails the first `failures` requests with 503
func flakyServer(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Echo-Tenant", r.Header.Get(types.HeaderTenantID))
		if len(body) == 0 {
			body = []byte(`{"ok":true}`)
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testClient() Client {
	return NewDefaultClient(ClientConfig{
		Timeout:      5 * time.Second,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
	}, logger.NewNopLogger())
}

func TestDefaultClient_Send(t *testing.T) {
	srv, calls := flakyServer(t, 0)

	resp, err := testClient().Send(context.Background(), &Request{
		Method:  http.MethodPost,
		URL:     srv.URL + "/invoices",
		Headers: map[string]string{types.HeaderTenantID: "tenant_1"},
		Body:    []byte(`{"invoice_number":"INV-1"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"invoice_number":"INV-1"}`, string(resp.Body))
	assert.Equal(t, "tenant_1", resp.Headers["X-Echo-Tenant"])
	assert.Equal(t, int32(1), calls.Load())
}

func TestDefaultClient_Retries(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		headers     map[string]string
		expectCalls int32
		expectErr   bool
	}{
		{
			name:        "get is retried",
			method:      http.MethodGet,
			expectCalls: 2,
		},
		{
			name:        "put is retried",
			method:      http.MethodPut,
			expectCalls: 2,
		},
		{
			name:        "post without idempotency key is not retried",
			method:      http.MethodPost,
			expectCalls: 1,
			expectErr:   true,
		},
		{
			name:        "post with idempotency key is retried",
			method:      http.MethodPost,
			headers:     map[string]string{types.HeaderIdempotencyKey: "payment-abc"},
			expectCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := flakyServer(t, 1)

			_, err := testClient().Send(context.Background(), &Request{
				Method:  tt.method,
				URL:     srv.URL + "/payments",
				Headers: tt.headers,
				Body:    []byte(`{}`),
			})

			assert.Equal(t, tt.expectCalls, calls.Load())
			if !tt.expectErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			httpErr, ok := IsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
			assert.True(t, ierr.IsRemote(err))
		})
	}
}

func TestDefaultClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"exceeds_balance","message":"too much"}}`))
	}))
	defer srv.Close()

	_, err := testClient().Send(context.Background(), &Request{
		Method: http.MethodGet,
		URL:    srv.URL + "/invoices/inv_1",
	})
	require.Error(t, err)

	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	assert.Contains(t, string(httpErr.Response), "exceeds_balance")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDefaultClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewDefaultClient(ClientConfig{Timeout: time.Second}, nil).Send(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    url + "/payments",
	})
	require.Error(t, err)
	assert.True(t, ierr.IsRemote(err))
}

func TestDefaultClient_RateLimitHonoursCancellation(t *testing.T) {
	srv, _ := flakyServer(t, 0)
	c := NewDefaultClient(ClientConfig{
		Timeout:   time.Second,
		RateLimit: 0.001,
		RateBurst: 1,
	}, nil)

	req := &Request{Method: http.MethodGet, URL: srv.URL + "/tax-rates"}
	_, err := c.Send(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Send(ctx, req)
	require.Error(t, err)
	assert.True(t, ierr.IsRemote(err))
}
