package chatvault

import "context"

// URIOpener hands a URI to the application registered for its scheme.
type URIOpener interface {
	Open(ctx context.Context, uri string) error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Downloader saves a data URI through the browser's download mechanism to
// a path relative to the download directory.
type Downloader interface {
	Download(ctx context.Context, dataURI string, relPath string) error
}
