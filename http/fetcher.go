package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/chatvault"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// maxPageBytes bounds the size of a fetched page.
const maxPageBytes = 32 << 20

// userAgent is sent with page requests. Shared-conversation pages reject
// clients without a browser-like agent.
const userAgent = "Mozilla/5.0 (compatible; chatvault/1.0)"

// Ensure Fetcher implements chatvault.Fetcher at compile time.
var _ chatvault.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves server-rendered pages, such as public shared
// conversation links, without a browser.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", chatvault.Errorf(chatvault.EINVALID, "invalid url %q: %v", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", chatvault.Errorf(chatvault.ENOTFOUND, "page %s not found", url)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return "", chatvault.Errorf(chatvault.EPERMISSION, "page %s requires sign-in", url)
	case resp.StatusCode != http.StatusOK:
		return "", chatvault.Errorf(chatvault.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	return string(body), nil
}

// Close releases resources. http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
