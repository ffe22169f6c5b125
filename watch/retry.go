// Package watch implements the price watch pipeline: fetching with retries,
// change detection against history, notification and scheduling.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/fwojciec/pricewatch"
)

// Default retry policy.
const (
	DefaultMaxAttempts = 2
)

// Backoff is a delay drawn uniformly from [Min, Max]. The zero value means
// no delay.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// DefaultPreDelay is applied before every attempt.
func DefaultPreDelay() Backoff {
	return Backoff{Min: 1 * time.Second, Max: 3 * time.Second}
}

// DefaultRetryDelay is applied between failed attempts.
func DefaultRetryDelay() Backoff {
	return Backoff{Min: 3 * time.Second, Max: 6 * time.Second}
}

// Next returns a delay within the band.
func (b Backoff) Next() time.Duration {
	if b.Max <= b.Min {
		return max(b.Min, 0)
	}
	return b.Min + rand.N(b.Max-b.Min+1)
}

var errChallenge = errors.New("anti-bot challenge page")

var _ pricewatch.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher wraps a Fetcher with a courtesy delay before every attempt,
// optional per-host rate limiting, and retries on transport failures and
// anti-bot challenge pages.
type RetryFetcher struct {
	next        pricewatch.Fetcher
	maxAttempts int
	preDelay    Backoff
	retryDelay  Backoff
	detector    pricewatch.ChallengeDetector
	limiter     pricewatch.HostLimiter
	logger      *slog.Logger
}

// RetryOption configures a RetryFetcher.
type RetryOption func(*RetryFetcher)

// WithMaxAttempts sets the total number of attempts. Defaults to 2.
func WithMaxAttempts(n int) RetryOption {
	return func(f *RetryFetcher) {
		f.maxAttempts = n
	}
}

// WithPreDelay sets the delay applied before every attempt.
func WithPreDelay(b Backoff) RetryOption {
	return func(f *RetryFetcher) {
		f.preDelay = b
	}
}

// WithRetryDelay sets the delay applied after a failed attempt.
func WithRetryDelay(b Backoff) RetryOption {
	return func(f *RetryFetcher) {
		f.retryDelay = b
	}
}

// WithChallengeDetector treats pages recognized by d as failed attempts.
func WithChallengeDetector(d pricewatch.ChallengeDetector) RetryOption {
	return func(f *RetryFetcher) {
		f.detector = d
	}
}

// WithHostLimiter waits on l before every attempt.
func WithHostLimiter(l pricewatch.HostLimiter) RetryOption {
	return func(f *RetryFetcher) {
		f.limiter = l
	}
}

// WithRetryLogger sets the logger used for retry diagnostics.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(f *RetryFetcher) {
		f.logger = logger
	}
}

// NewRetryFetcher creates a RetryFetcher around next.
func NewRetryFetcher(next pricewatch.Fetcher, opts ...RetryOption) *RetryFetcher {
	f := &RetryFetcher{
		next:        next,
		maxAttempts: DefaultMaxAttempts,
		preDelay:    DefaultPreDelay(),
		retryDelay:  DefaultRetryDelay(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxAttempts < 1 {
		f.maxAttempts = 1
	}
	return f
}

// Fetch retrieves url, making at most maxAttempts attempts.
// Returns EEXHAUSTED when every attempt failed, or the context error if the
// context is canceled while waiting.
func (f *RetryFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	host := hostOf(rawURL)

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if err := sleep(ctx, f.preDelay.Next()); err != nil {
			return "", err
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, host); err != nil {
				return "", err
			}
		}

		html, err := f.next.Fetch(ctx, rawURL)
		if err == nil && f.detector != nil && f.detector.IsChallenge(html) {
			err = errChallenge
		}
		if err == nil {
			return html, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		// Don't wait after the last attempt
		if attempt == f.maxAttempts {
			break
		}

		f.logger.Debug("retrying fetch",
			"url", rawURL,
			"attempt", attempt+1,
			"err", err,
		)
		if err := sleep(ctx, f.retryDelay.Next()); err != nil {
			return "", err
		}
	}

	return "", pricewatch.Errorf(pricewatch.EEXHAUSTED, "failed to fetch %s after %d attempts: %v", rawURL, f.maxAttempts, lastErr)
}

// Close delegates to the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
