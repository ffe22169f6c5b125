package mock

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pricewatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ pricewatch.HostLimiter = (*HostLimiter)(nil)

// HostLimiter is a mock implementation of pricewatch.HostLimiter.
type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}

var _ pricewatch.ChallengeDetector = (*ChallengeDetector)(nil)

// ChallengeDetector is a mock implementation of pricewatch.ChallengeDetector.
type ChallengeDetector struct {
	IsChallengeFn func(html string) bool
}

func (d *ChallengeDetector) IsChallenge(html string) bool {
	return d.IsChallengeFn(html)
}
