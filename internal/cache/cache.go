// Package cache stores successful HTTP responses keyed by URL so repeated
// crawls avoid refetching pages.
package cache

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/crawler"
)

// Entry is one cached response.
type Entry struct {
	URL        string      `json:"url"`
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers,omitempty"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Store persists entries keyed by request URL.
type Store interface {
	Get(ctx context.Context, url string) (Entry, bool, error)
	Put(ctx context.Context, url string, entry Entry) error
	Close() error
}

// Fetcher serves responses from a Store and falls through to the wrapped
// fetcher on a miss. Only 2xx responses are stored. Cache read and write
// failures are logged and never fail the fetch.
type Fetcher struct {
	next   crawler.Fetcher
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

var _ crawler.Fetcher = (*Fetcher)(nil)

// NewFetcher wraps next with store.
func NewFetcher(next crawler.Fetcher, store Store, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{next: next, store: store, logger: logger, now: time.Now}
}

// Fetch implements crawler.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, req crawler.FetchRequest) (crawler.FetchResponse, error) {
	entry, ok, err := f.store.Get(ctx, req.URL)
	switch {
	case err != nil:
		f.logger.Warn("cache read failed", zap.String("url", req.URL), zap.Error(err))
	case ok:
		return crawler.FetchResponse{
			URL:        entry.URL,
			StatusCode: entry.StatusCode,
			Headers:    entry.Headers,
			Body:       entry.Body,
			FromCache:  true,
		}, nil
	}

	resp, err := f.next.Fetch(ctx, req)
	if err != nil {
		return resp, err
	}
	if !resp.OK() {
		return resp, nil
	}
	entry = Entry{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		StoredAt:   f.now().UTC(),
	}
	if err := f.store.Put(ctx, req.URL, entry); err != nil {
		f.logger.Warn("cache write failed", zap.String("url", req.URL), zap.Error(err))
	}
	return resp, nil
}
