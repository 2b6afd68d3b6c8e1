package rod

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/chatvault"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// eventBuffer is the number of page notifications queued for the agent.
const eventBuffer = 64

// saveEventWait bounds how long a save click waits for a full queue.
const saveEventWait = time.Second

// Ensure Page implements chatvault.Page at compile time.
var _ chatvault.Page = (*Page)(nil)

// Page is a live conversation tab. It reports DOM mutations and save
// clicks through a page binding.
type Page struct {
	page   *rod.Page
	owned  bool
	events chan chatvault.PageEvent

	stopBinding func() error
	removeInit  func() error

	closeOnce sync.Once
	done      chan struct{}
}

// OpenPage attaches to the tab showing url, or opens one. Notifications
// are installed on the current document and on every later navigation.
func OpenPage(ctx context.Context, browser *rod.Browser, url string) (*Page, error) {
	p := &Page{
		events: make(chan chatvault.PageEvent, eventBuffer),
		done:   make(chan struct{}),
	}

	page, err := findTab(browser, url)
	if err != nil {
		return nil, err
	}
	if page == nil {
		page, err = browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, err
		}
		p.owned = true
		if err := page.Context(ctx).Navigate(url); err != nil {
			_ = page.Close()
			return nil, err
		}
		if err := page.Context(ctx).WaitLoad(); err != nil {
			_ = page.Close()
			return nil, err
		}
	}
	p.page = page

	if p.stopBinding, err = page.Expose(bindingName, p.notify); err != nil {
		p.Close()
		return nil, err
	}
	if p.removeInit, err = page.EvalOnNewDocument("(" + observerScript + ")()"); err != nil {
		p.Close()
		return nil, err
	}
	if _, err := page.Context(ctx).Eval(observerScript); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// findTab returns the open tab whose URL starts with url, or nil.
func findTab(browser *rod.Browser, url string) (*rod.Page, error) {
	pages, err := browser.Pages()
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		info, err := page.Info()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.URL, url) {
			return page, nil
		}
	}
	return nil, nil
}

// URL returns the current page URL.
func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// HTML returns the rendered DOM with selected message elements marked.
func (p *Page) HTML(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(snapshotScript)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// InjectControl adds a save control to a message element. An element that
// already carries a control is left alone.
func (p *Page) InjectControl(ctx context.Context, containerSelector string, index int, messageID string) error {
	res, err := p.page.Context(ctx).Eval(injectScript, containerSelector, index, messageID)
	if err != nil {
		return err
	}
	if res.Value.Str() == "missing" {
		return chatvault.Errorf(chatvault.ENOTFOUND, "no element %d for %q", index, containerSelector)
	}
	return nil
}

// Events returns page notifications until ctx is done or the page is
// closed.
func (p *Page) Events(ctx context.Context) (<-chan chatvault.PageEvent, error) {
	out := make(chan chatvault.PageEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.done:
				return
			case ev := <-p.events:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				case <-p.done:
					return
				}
			}
		}
	}()
	return out, nil
}

// Close removes the notifications and closes the tab if OpenPage opened it.
func (p *Page) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		if p.stopBinding != nil {
			_ = p.stopBinding()
		}
		if p.removeInit != nil {
			_ = p.removeInit()
		}
		if p.owned && p.page != nil {
			err = p.page.Close()
		}
	})
	return err
}

// notify receives binding calls from the page. Change notifications are
// dropped when the queue is full since a later one supersedes them.
func (p *Page) notify(payload gson.JSON) (any, error) {
	ev := chatvault.PageEvent{Type: chatvault.PageEventType(payload.Get("type").Str())}

	switch ev.Type {
	case chatvault.EventContentChanged:
		select {
		case p.events <- ev:
		default:
		}
	case chatvault.EventSaveClicked:
		ev.MessageID = payload.Get("id").Str()
		select {
		case p.events <- ev:
		case <-p.done:
		case <-time.After(saveEventWait):
		}
	}
	return nil, nil
}
