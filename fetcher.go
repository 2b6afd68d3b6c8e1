package chatvault

import "context"

// Fetcher retrieves rendered HTML from URLs.
// Implementations use browser automation so that client-rendered
// conversations are present in the returned HTML.
type Fetcher interface {
	// Fetch navigates to the URL, waits for JavaScript to render,
	// and returns the rendered HTML.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	Close() error
}
