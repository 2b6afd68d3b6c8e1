package mock

import (
	"context"

	"github.com/fwojciec/chatvault"
)

var _ chatvault.Page = (*Page)(nil)

// Page is a mock implementation of chatvault.Page.
type Page struct {
	URLFn           func() string
	HTMLFn          func(ctx context.Context) (string, error)
	InjectControlFn func(ctx context.Context, containerSelector string, index int, messageID string) error
	EventsFn        func(ctx context.Context) (<-chan chatvault.PageEvent, error)
}

func (p *Page) URL() string {
	return p.URLFn()
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.HTMLFn(ctx)
}

func (p *Page) InjectControl(ctx context.Context, containerSelector string, index int, messageID string) error {
	return p.InjectControlFn(ctx, containerSelector, index, messageID)
}

func (p *Page) Events(ctx context.Context) (<-chan chatvault.PageEvent, error) {
	return p.EventsFn(ctx)
}
