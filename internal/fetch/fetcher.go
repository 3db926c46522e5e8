// Package fetch retrieves the good-news feed and installs it in the store.
//
// Each Fetch is a single attempt: no retry, no backoff. The caller decides
// whether to try again. On success the store is replaced wholesale; on any
// failure it is cleared so that stale stories are never shown.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abelbrown/ramah/internal/feed"
	"github.com/abelbrown/ramah/internal/logging"
)

// DefaultEndpoint is the published feed.
const DefaultEndpoint = "https://lewdry.github.io/ramah-data/good_news.json"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 32 << 20

// LoadingFunc is notified when a request starts (true) and ends (false).
type LoadingFunc func(loading bool)

// Fetcher retrieves the feed from a fixed endpoint.
type Fetcher struct {
	client    *http.Client
	endpoint  string
	store     *feed.Store
	loading   LoadingFunc
	now       func() time.Time
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLoading sets the loading indicator hook.
func WithLoading(fn LoadingFunc) Option {
	return func(f *Fetcher) { f.loading = fn }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithClock overrides the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// NewFetcher creates a Fetcher for endpoint that writes into store.
// A zero timeout leaves timeouts to the transport.
func NewFetcher(endpoint string, timeout time.Duration, store *feed.Store, opts ...Option) *Fetcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		endpoint:  endpoint,
		store:     store,
		now:       time.Now,
		userAgent: "ramah/0.1 (+https://lewdry.github.io/ramah/)",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Endpoint returns the URL being fetched.
func (f *Fetcher) Endpoint() string { return f.endpoint }

// Fetch retrieves, decodes and stores the feed. On failure the store is
// reset and an *Error is returned.
func (f *Fetcher) Fetch(ctx context.Context) (feed.Snapshot, error) {
	f.setLoading(true)
	defer f.setLoading(false)

	start := time.Now()
	logging.Debug("Fetching feed", "endpoint", f.endpoint)

	snap, err := f.fetch(ctx)
	if err != nil {
		f.store.Reset()
		logging.Warn("Feed fetch failed", "endpoint", f.endpoint, "error", err, "duration", time.Since(start))
		return feed.Snapshot{}, err
	}

	logging.Info("Feed fetched", "stories", snap.Len(), "generation", snap.Generation, "duration", time.Since(start))
	return snap, nil
}

func (f *Fetcher) fetch(ctx context.Context) (feed.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return feed.Snapshot{}, &Error{Kind: KindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return feed.Snapshot{}, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return feed.Snapshot{}, &Error{Kind: KindNetwork, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return feed.Snapshot{}, &Error{Kind: KindNetwork, Err: fmt.Errorf("read body: %w", err)}
	}

	payload, err := feed.DecodePayload(body)
	if err != nil {
		return feed.Snapshot{}, &Error{Kind: KindFormat, Err: err}
	}

	stories, problems := payload.Stories()
	for _, p := range problems {
		logging.Debug("Recovered story field", "error", p)
	}

	fetchedAt := f.now()
	f.store.Replace(stories, payload.Metadata, fetchedAt)
	logging.Debug("Feed decoded", "shape", payload.Kind, "alias", payload.Alias, "metadata_keys", len(payload.Metadata))

	return f.store.Snapshot(), nil
}

func (f *Fetcher) setLoading(on bool) {
	if f.loading != nil {
		f.loading(on)
	}
}
