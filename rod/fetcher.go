package rod

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/chatvault"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultSettleTime is how long the DOM must stay unchanged before a
// snapshot is taken. Chat applications hydrate their history after load.
const DefaultSettleTime = 1500 * time.Millisecond

// Ensure Fetcher implements chatvault.Fetcher at compile time.
var _ chatvault.Fetcher = (*Fetcher)(nil)

// Fetcher opens conversation URLs in the managed browser and returns the
// rendered HTML once the page has settled.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	settle  time.Duration
}

// NewFetcher creates a new Fetcher on manager. Close closes the manager.
func NewFetcher(manager *BrowserManager) *Fetcher {
	return &Fetcher{manager: manager, settle: DefaultSettleTime}
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	defer f.manager.IncrementPageCount()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	// A page that keeps streaming never settles; the snapshot is taken
	// after the bound regardless.
	settleCtx, cancel := context.WithTimeout(ctx, 10*f.settle)
	defer cancel()
	if err := page.Context(settleCtx).WaitDOMStable(f.settle, 0); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}

	return page.HTML()
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
