package pricewatch

import "context"

// Browser identity presented by every fetcher: a desktop Chrome arriving
// from a search result.
const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/114.0.0.0 Safari/537.36"
	AcceptLanguage = "en-US,en;q=0.9"
	Referer        = "https://www.google.com/"
)

// Fetcher retrieves the HTML of a product page.
// Implementations may use plain HTTP or browser automation.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// HostLimiter throttles requests per host.
type HostLimiter interface {
	// Wait blocks until a request to host is allowed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}

// ChallengeDetector recognizes anti-bot challenge pages that were served in
// place of the requested content.
type ChallengeDetector interface {
	// IsChallenge reports whether html is a challenge page.
	IsChallenge(html string) bool
}
