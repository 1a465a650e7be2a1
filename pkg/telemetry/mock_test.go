package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bsidebar/insights/pkg/bookmarks"
)

const testEndpoint = "https://collector.test/api/evaluate"

// capturedRequest is one request seen by MockHTTPClient.
type capturedRequest struct {
	BatchID string
	Body    batchRequest
}

// MockHTTPClient captures HTTP requests for testing. respond decides the
// outcome of the n-th request (0-based); nil means success.
type MockHTTPClient struct {
	*http.Client
	mu       sync.Mutex
	requests []capturedRequest
	respond  func(n int, req *http.Request) (*http.Response, error)
}

func NewMockHTTPClient() *MockHTTPClient {
	mock := &MockHTTPClient{}
	mock.Client = &http.Client{Transport: mock}
	return mock
}

func (m *MockHTTPClient) SetResponder(f func(n int, req *http.Request) (*http.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = f
}

// RoundTrip implements http.RoundTripper and captures the request
func (m *MockHTTPClient) RoundTrip(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)

	var decoded batchRequest
	_ = json.Unmarshal(body, &decoded)

	m.mu.Lock()
	n := len(m.requests)
	m.requests = append(m.requests, capturedRequest{
		BatchID: req.Header.Get(BatchIDHeader),
		Body:    decoded,
	})
	respond := m.respond
	m.mu.Unlock()

	if respond == nil {
		return jsonResponse(http.StatusOK, `{"success": true}`), nil
	}
	return respond(n, req)
}

func (m *MockHTTPClient) Requests() []capturedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]capturedRequest{}, m.requests...)
}

func (m *MockHTTPClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

var errNetwork = errors.New("connection refused")

// failFirst fails the first n requests with a transport error.
func failFirst(n int) func(int, *http.Request) (*http.Response, error) {
	return func(i int, _ *http.Request) (*http.Response, error) {
		if i < n {
			return nil, errNetwork
		}
		return jsonResponse(http.StatusOK, `{"success": true}`), nil
	}
}

func alwaysFail(int, *http.Request) (*http.Response, error) {
	return nil, errNetwork
}

func newTestClient(t *testing.T, mock *MockHTTPClient, opts ...Option) *Client {
	t.Helper()

	base := []Option{
		WithEndpoint(testEndpoint),
		WithHTTPClient(mock.Client),
		WithRetryDelay(time.Microsecond),
		WithRequestTimeout(time.Second),
	}
	return NewClient(slog.New(slog.DiscardHandler), append(base, opts...)...)
}

// staticBookmarks serves a fixed tree under bookmarks.RootID.
type staticBookmarks struct {
	children []*bookmarks.Node
	err      error
}

func (s staticBookmarks) SubTree(_ context.Context, id string) ([]*bookmarks.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	if id != bookmarks.RootID {
		return []*bookmarks.Node{}, nil
	}
	return []*bookmarks.Node{{ID: bookmarks.RootID, Children: s.children}}, nil
}

func eventValue(t *testing.T, e Event) string {
	t.Helper()
	require.NotNil(t, e.Value, "event %q has no scalar value", e.Kind)
	return *e.Value
}
