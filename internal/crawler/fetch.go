package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	FromCache  bool
}

// OK reports whether the response has a 2xx status.
func (r FetchResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// FetchError reports a failed fetch. StatusCode is zero when no response was
// received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError builds the FetchError for a non-2xx response.
func StatusError(resp FetchResponse) *FetchError {
	return &FetchError{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
	}
}
