package mock

import (
	"context"

	"github.com/fwojciec/chatvault"
)

// Compile-time interface verification.
var (
	_ chatvault.URIOpener  = (*URIOpener)(nil)
	_ chatvault.Clipboard  = (*Clipboard)(nil)
	_ chatvault.Downloader = (*Downloader)(nil)
)

// URIOpener is a mock implementation of chatvault.URIOpener.
type URIOpener struct {
	OpenFn func(ctx context.Context, uri string) error
}

func (o *URIOpener) Open(ctx context.Context, uri string) error {
	return o.OpenFn(ctx, uri)
}

// Clipboard is a mock implementation of chatvault.Clipboard.
type Clipboard struct {
	WriteTextFn func(ctx context.Context, text string) error
}

func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	return c.WriteTextFn(ctx, text)
}

// Downloader is a mock implementation of chatvault.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, dataURI string, relPath string) error
}

func (d *Downloader) Download(ctx context.Context, dataURI string, relPath string) error {
	return d.DownloadFn(ctx, dataURI, relPath)
}
