package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
)

// MockFetcher returns a fixed body or error and counts calls.
type MockFetcher struct {
	mu    sync.Mutex
	Body  []byte
	Err   error
	Block chan struct{} // when set, calls return only once it is closed or ctx is done
	calls int
	urls  []string
}

// Fetch records the call and returns the body or error configured at call time.
func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.urls = append(m.urls, url)
	body, err, block := m.Body, m.Err, m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// SetBody replaces the body returned by later calls.
func (m *MockFetcher) SetBody(body []byte) {
	m.mu.Lock()
	m.Body = body
	m.mu.Unlock()
}

// Calls returns how many times Fetch was invoked.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// URLs returns the fetched URLs in call order.
func (m *MockFetcher) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.urls...)
}

// CSVServer is an httptest server that serves a CSV body and counts requests.
type CSVServer struct {
	*httptest.Server
	hits   atomic.Int64
	mu     sync.Mutex
	body   string
	status int
}

// NewCSVServer starts a server answering every GET with body.
func NewCSVServer(body string) *CSVServer {
	s := &CSVServer{body: body, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		body, status := s.body, s.status
		s.mu.Unlock()

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	return s
}

// SetResponse changes what the server returns.
func (s *CSVServer) SetResponse(status int, body string) {
	s.mu.Lock()
	s.status, s.body = status, body
	s.mu.Unlock()
}

// Hits returns the number of requests served.
func (s *CSVServer) Hits() int64 {
	return s.hits.Load()
}
