package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/pkg/retry"
)

// DefaultMaxBodyBytes bounds the size of a downloaded export.
const DefaultMaxBodyBytes = 32 << 20

// Fetcher retrieves the raw bytes of a data source.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient is the subset of *http.Client used by HTTPFetcher.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher downloads a source with an unauthenticated GET, retrying transient
// failures (network errors, 5xx, 429).
type HTTPFetcher struct {
	client   HTTPClient
	retry    retry.Config
	maxBytes int64
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client HTTPClient) FetcherOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithRetry sets the retry policy. Only transient failures are attempted again.
func WithRetry(cfg errors.RetryConfig) FetcherOption {
	return func(f *HTTPFetcher) {
		f.retry = cfg.ToRetryConfig()
	}
}

// WithMaxBodyBytes caps the response body size.
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		retry:    errors.DefaultRetryConfig().ToRetryConfig(),
		maxBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url and returns the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := retry.DoWithResult(ctx, f.retry, func() ([]byte, error) {
		body, err := f.fetchOnce(ctx, url)
		if err != nil && !errors.IsTransient(err) {
			return nil, retry.NonRetryable(err)
		}
		return body, err
	})

	var permanent *retry.NonRetryableError
	if errors.As(err, &permanent) {
		return nil, permanent.Err
	}
	return body, err
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPFetcher", "Fetch", "build request")
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrSourceUnavailable, err), "HTTPFetcher", "Fetch", "http get")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("%w: %d", errors.ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.WrapTransient(statusErr, "HTTPFetcher", "Fetch", "http status")
		}
		return nil, errors.WrapInvalid(statusErr, "HTTPFetcher", "Fetch", "http status")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.WrapTransient(err, "HTTPFetcher", "Fetch", "read body")
	}
	if int64(len(body)) > f.maxBytes {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: body exceeds %d bytes", errors.ErrInvalidData, f.maxBytes),
			"HTTPFetcher", "Fetch", "read body")
	}
	return body, nil
}
