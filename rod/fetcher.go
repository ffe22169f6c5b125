// Package rod provides a browser-automation implementation of
// pricewatch.Fetcher for pages that only render their prices with JavaScript
// or that reject plain HTTP clients.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds one page load.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements pricewatch.Fetcher at compile time.
var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager  *BrowserManager
	timeout  time.Duration
	maxPages int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout of one page load.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRecycleAfter sets how many pages the browser serves before it is
// replaced by a fresh one.
func WithRecycleAfter(pages int64) Option {
	return func(f *Fetcher) {
		f.maxPages = pages
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(WithMaxPages(f.maxPages))
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to the URL as a desktop Chrome coming from a search
// result and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	browser := f.manager.Browser()
	if browser == nil {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "fetcher is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	defer f.manager.IncrementPageCount()

	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      pricewatch.UserAgent,
		AcceptLanguage: pricewatch.AcceptLanguage,
	}); err != nil {
		return "", err
	}
	if _, err := page.SetExtraHeaders([]string{"Referer", pricewatch.Referer}); err != nil {
		return "", err
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Recycles reports how many times the browser has been replaced.
func (f *Fetcher) Recycles() int {
	return f.manager.Generation() - 1
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
