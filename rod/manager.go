// Package rod drives a Chrome browser through the DevTools protocol. It
// provides the live conversation page the extraction agent runs against,
// a snapshot fetcher and browser downloads.
package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before a headless browser
// is recycled.
const DefaultMaxPages = 75

// BrowserManager manages the browser lifecycle. A headless browser is
// recycled after maxPages pages to bound Chrome's memory growth; a visible
// browser or an attached one is never recycled.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	maxPages  int64
	mu        sync.Mutex
	closed    atomic.Bool

	headless    bool
	userDataDir string
	controlURL  string
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the maximum number of pages before the browser is recycled.
// Zero disables recycling.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithHeadless selects a headless browser. Defaults to true.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// WithUserDataDir launches the browser with a persistent profile so that
// chat sessions stay signed in.
func WithUserDataDir(dir string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.userDataDir = dir
	}
}

// WithControlURL attaches to an already running browser instead of
// launching one, e.g. ws://127.0.0.1:9222/devtools/browser/<id>.
func WithControlURL(u string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.controlURL = u
	}
}

// NewBrowserManager creates a new BrowserManager and starts or attaches to
// a browser. Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		headless: true,
	}
	for _, opt := range opts {
		opt(bm)
	}
	if !bm.headless || bm.controlURL != "" {
		bm.maxPages = 0
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}

	return bm, nil
}

// Browser returns the current browser instance, recycling if the page count
// has reached maxPages. Callers should call IncrementPageCount after using
// the browser to process a page.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.maxPages > 0 && atomic.LoadInt64(&bm.pageCount) >= bm.maxPages {
		bm.recycleBrowser()
	}

	return bm.browser
}

// IncrementPageCount increments the page counter. Call this after successfully
// processing a page to track progress toward the recycling threshold.
func (bm *BrowserManager) IncrementPageCount() {
	atomic.AddInt64(&bm.pageCount, 1)
}

// Close releases browser resources. An attached browser is left running.
// Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// launchBrowser starts a new browser instance, or attaches to the one at
// controlURL.
func (bm *BrowserManager) launchBrowser() error {
	if bm.controlURL != "" {
		browser := rod.New().ControlURL(bm.controlURL)
		if err := browser.Connect(); err != nil {
			return fmt.Errorf("attaching to browser: %w", err)
		}
		bm.browser = browser
		return nil
	}

	lnchr := bm.newLauncher()
	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// newLauncher configures Chrome. Background throttling is disabled so that
// page observers keep firing while the chat tab is hidden. A visible browser
// skips the first-run prompts of a fresh profile.
func (bm *BrowserManager) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Leakless(true).
		Headless(bm.headless)
	if bm.headless {
		l = l.Set("disable-dev-shm-usage").Set("disable-hang-monitor")
	} else {
		l = l.Set("no-first-run").Set("no-default-browser-check")
	}
	if bm.userDataDir != "" {
		l = l.UserDataDir(bm.userDataDir)
	}
	return l
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	if bm.launcher == nil {
		bm.browser = nil
		return nil
	}

	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	bm.launcher.Kill()
	bm.launcher = nil
	return err
}

// recycleBrowser starts a fresh browser and closes the old one.
// If launching the new browser fails, the old browser is kept.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	prevBrowser, prevLauncher := bm.browser, bm.launcher
	bm.browser, bm.launcher = nil, nil

	if err := bm.launchBrowser(); err != nil {
		bm.browser, bm.launcher = prevBrowser, prevLauncher
		return
	}

	if prevBrowser != nil {
		_ = prevBrowser.Close()
	}
	if prevLauncher != nil {
		prevLauncher.Kill()
	}
	atomic.StoreInt64(&bm.pageCount, 0)
}

// LauncherPID returns the process ID of the browser launcher, or 0 for an
// attached browser.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
