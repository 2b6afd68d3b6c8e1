// Package browser hands URIs to the desktop application registered for
// their scheme.
package browser

import (
	"context"
	"io"
	"strings"

	"github.com/fwojciec/chatvault"
	"github.com/pkg/browser"
)

var _ chatvault.URIOpener = (*Opener)(nil)

// Opener implements chatvault.URIOpener with the operating system's URL
// handler.
type Opener struct {
	// OpenURL opens a URL. Defaults to browser.OpenURL.
	OpenURL func(url string) error
}

// NewOpener creates a new Opener. The handler's own output is discarded.
func NewOpener() *Opener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &Opener{OpenURL: browser.OpenURL}
}

// Open hands uri to the registered application.
func (o *Opener) Open(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.Contains(uri, "://") {
		return chatvault.Errorf(chatvault.EINVALID, "not an absolute uri: %q", uri)
	}
	if err := o.OpenURL(uri); err != nil {
		return chatvault.Errorf(chatvault.EUNAVAILABLE, "open uri: %v", err)
	}
	return nil
}
