package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/pricewatch"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the number of pages a browser serves before it is
// replaced. A watch run loads every tracked URL, so a long-running process
// crosses it every few runs.
const DefaultMaxPages = 75

// chromeFlags are passed to every launched browser. The identity flags make
// the headless browser look like the desktop Chrome the fetchers announce;
// the rest keep background tabs from being throttled.
var chromeFlags = map[flags.Flag][]string{
	"user-agent":                             {pricewatch.UserAgent},
	"lang":                                   {"en-US"},
	"disable-blink-features":                 {"AutomationControlled"},
	"disable-background-timer-throttling":    nil,
	"disable-backgrounding-occluded-windows": nil,
	"disable-renderer-backgrounding":         nil,
	"disable-dev-shm-usage":                  nil,
	"disable-hang-monitor":                   nil,
}

// session is one launched browser and the process behind it.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (s *session) close() error {
	if s == nil {
		return nil
	}
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

func launch() (*session, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for name, values := range chromeFlags {
		l = l.Set(name, values...)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &session{browser: browser, launcher: l}, nil
}

// BrowserManager hands out a shared headless browser and swaps it for a
// fresh one after maxPages pages. A new profile also drops the cookies a shop
// used to flag the previous session.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu         sync.Mutex
	current    *session
	pages      int64
	maxPages   int64
	generation int
	closed     bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages served before recycling.
// Values below one use DefaultMaxPages.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager launches the first browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}
	if bm.maxPages < 1 {
		bm.maxPages = DefaultMaxPages
	}

	s, err := launch()
	if err != nil {
		return nil, err
	}
	bm.current = s
	bm.generation = 1
	return bm, nil
}

// Browser returns the browser to open the next page in. Once the page
// budget is spent a fresh browser is launched first; if that launch fails
// the current browser keeps serving.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	if bm.pages >= bm.maxPages {
		if next, err := launch(); err == nil {
			// Pages still open in the old browser fail and are retried.
			_ = bm.current.close()
			bm.current = next
			bm.pages = 0
			bm.generation++
		}
	}
	return bm.current.browser
}

// IncrementPageCount records a served page.
func (bm *BrowserManager) IncrementPageCount() {
	bm.mu.Lock()
	bm.pages++
	bm.mu.Unlock()
}

// Generation reports how many browsers have been launched, starting at one.
func (bm *BrowserManager) Generation() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.generation
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	s := bm.current
	bm.current = nil
	return s.close()
}
