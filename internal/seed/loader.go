// Package seed replaces the transaction store contents with the product
// feed.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/txstore"
)

// DefaultURL is the public product transaction feed.
const DefaultURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

// maxFeedBytes bounds how much of the feed response is read.
const maxFeedBytes = 32 << 20

// Publisher announces a finished reload. It is optional.
type Publisher interface {
	PublishDatasetReloaded(ctx context.Context, count int) error
}

type Loader struct {
	url       string
	client    *http.Client
	timeout   time.Duration
	store     txstore.Replacer
	publisher Publisher
}

// Option customises a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithTimeout bounds the fetch plus the store replace.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithPublisher announces successful reloads through p.
func WithPublisher(p Publisher) Option {
	return func(l *Loader) { l.publisher = p }
}

func NewLoader(url string, store txstore.Replacer, opts ...Option) *Loader {
	if url == "" {
		url = DefaultURL
	}
	l := &Loader{
		url:     url,
		client:  http.DefaultClient,
		timeout: 30 * time.Second,
		store:   store,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the feed and replaces the store contents with it. It returns
// the number of records inserted. Failures are not retried.
func (l *Loader) Load(ctx context.Context) (int, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := l.fetch(ctx)
	if err != nil {
		return 0, core.Upstream("fetch seed feed", err)
	}

	ts, err := Decode(data)
	if err != nil {
		return 0, core.Upstream("decode seed feed", err)
	}

	if err := l.store.ReplaceAll(ctx, ts); err != nil {
		return 0, core.Upstream("replace transactions", err)
	}

	slog.InfoContext(ctx, "Seed data loaded",
		"count", len(ts),
		"url", l.url,
		"duration_ms", time.Since(start).Milliseconds())

	if l.publisher != nil {
		if err := l.publisher.PublishDatasetReloaded(ctx, len(ts)); err != nil {
			// The store is already replaced; the event is informational.
			slog.ErrorContext(ctx, "Failed to publish dataset reloaded event", "error", err, "count", len(ts))
		}
	}

	return len(ts), nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", l.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return data, nil
}
