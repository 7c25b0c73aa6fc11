package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/guardpost/console/internal/httpclient"
)

var _ httpclient.Client = (*MockHTTPClient)(nil)

// MockHTTPClient implements httpclient.Client for testing. Routes are keyed
// by method and URL suffix; every request is recorded.
type MockHTTPClient struct {
	mu       sync.RWMutex
	routes   map[string]MockResponse
	requests []*httpclient.Request
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string]MockResponse),
	}
}

// RegisterResponse registers a mock response for a method and URL suffix
func (m *MockHTTPClient) RegisterResponse(method, url string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" "+url] = resp
}

// RegisterJSONResponse is a helper to register a JSON response
func (m *MockHTTPClient) RegisterJSONResponse(method, url string, status int, body any) {
	payload, _ := json.Marshal(body)
	m.RegisterResponse(method, url, MockResponse{
		StatusCode: status,
		Body:       payload,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	})
}

// Send implements the httpclient.Client interface
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	url := req.URL
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}

	var matchedResponse MockResponse
	var found bool
	for route, resp := range m.routes {
		method, suffix, _ := strings.Cut(route, " ")
		if method == req.Method && strings.HasSuffix(url, suffix) {
			matchedResponse = resp
			found = true
			break
		}
	}

	if !found {
		return nil, httpclient.NewError(http.StatusNotFound, []byte("Not Found"))
	}

	if matchedResponse.StatusCode >= 400 {
		return nil, httpclient.NewError(matchedResponse.StatusCode, matchedResponse.Body)
	}

	return &httpclient.Response{
		StatusCode: matchedResponse.StatusCode,
		Body:       matchedResponse.Body,
		Headers:    matchedResponse.Headers,
	}, nil
}

// Requests returns every request sent so far
func (m *MockHTTPClient) Requests() []*httpclient.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*httpclient.Request(nil), m.requests...)
}

// LastRequest returns the most recent request, or nil
func (m *MockHTTPClient) LastRequest() *httpclient.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Clear removes all registered responses and recorded requests
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]MockResponse)
	m.requests = nil
}
