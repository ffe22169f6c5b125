package watch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/goquery"
	"github.com/fwojciec/pricewatch/mock"
	"github.com/fwojciec/pricewatch/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDelay disables the courtesy and retry delays.
func noDelay() []watch.RetryOption {
	return []watch.RetryOption{
		watch.WithPreDelay(watch.Backoff{}),
		watch.WithRetryDelay(watch.Backoff{}),
	}
}

func TestRetryFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns first successful response", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls.Add(1)
				return "<html>ok</html>", nil
			},
		}

		f := watch.NewRetryFetcher(inner, noDelay()...)
		html, err := f.Fetch(context.Background(), "https://www.paris.cl/x")

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries transport failure", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				if calls.Add(1) == 1 {
					return "", errors.New("HTTP 503")
				}
				return "<html>ok</html>", nil
			},
		}

		f := watch.NewRetryFetcher(inner, noDelay()...)
		html, err := f.Fetch(context.Background(), "https://www.paris.cl/x")

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("retries challenge page then succeeds", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				if calls.Add(1) == 1 {
					return "<html>Please solve the CAPTCHA</html>", nil
				}
				return "<html><h1>TV</h1></html>", nil
			},
		}

		f := watch.NewRetryFetcher(inner, append(noDelay(),
			watch.WithChallengeDetector(goquery.NewChallengeDetector()))...)
		html, err := f.Fetch(context.Background(), "https://www.falabella.com/p/1")

		require.NoError(t, err)
		assert.Equal(t, "<html><h1>TV</h1></html>", html)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("persistent challenge exhausts after exactly max attempts", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls.Add(1)
				return "<html>captcha</html>", nil
			},
		}

		f := watch.NewRetryFetcher(inner, append(noDelay(),
			watch.WithMaxAttempts(3),
			watch.WithChallengeDetector(goquery.NewChallengeDetector()))...)
		_, err := f.Fetch(context.Background(), "https://www.falabella.com/p/1")

		require.Error(t, err)
		assert.Equal(t, pricewatch.EEXHAUSTED, pricewatch.ErrorCode(err))
		assert.Contains(t, pricewatch.ErrorMessage(err), "after 3 attempts")
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("persistent failure defaults to two attempts", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls.Add(1)
				return "", errors.New("connection reset")
			},
		}

		f := watch.NewRetryFetcher(inner, noDelay()...)
		_, err := f.Fetch(context.Background(), "https://www.paris.cl/x")

		assert.Equal(t, pricewatch.EEXHAUSTED, pricewatch.ErrorCode(err))
		assert.Contains(t, pricewatch.ErrorMessage(err), "connection reset")
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("waits on host limiter before every attempt", func(t *testing.T) {
		t.Parallel()

		var hosts []string
		limiter := &mock.HostLimiter{
			WaitFn: func(_ context.Context, host string) error {
				hosts = append(hosts, host)
				return nil
			},
		}
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "", errors.New("boom")
			},
		}

		f := watch.NewRetryFetcher(inner, append(noDelay(), watch.WithHostLimiter(limiter))...)
		_, _ = f.Fetch(context.Background(), "https://www.spdigital.cl/product/1")

		assert.Equal(t, []string{"www.spdigital.cl", "www.spdigital.cl"}, hosts)
	})

	t.Run("zero host rate lets every fetch through", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "<html>" + url + "</html>", nil
			},
		}

		f := watch.NewRetryFetcher(inner, append(noDelay(), watch.WithHostLimiter(watch.NewHostLimiter(0)))...)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		for _, url := range []string{"https://www.paris.cl/a", "https://www.paris.cl/b"} {
			html, err := f.Fetch(ctx, url)
			require.NoError(t, err)
			assert.Contains(t, html, url)
		}
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "", errors.New("boom")
			},
		}

		f := watch.NewRetryFetcher(inner,
			watch.WithPreDelay(watch.Backoff{}),
			watch.WithRetryDelay(watch.Backoff{Min: time.Hour, Max: time.Hour}),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := f.Fetch(ctx, "https://www.paris.cl/x")

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("close delegates to wrapped fetcher", func(t *testing.T) {
		t.Parallel()

		closed := false
		inner := &mock.Fetcher{CloseFn: func() error { closed = true; return nil }}

		require.NoError(t, watch.NewRetryFetcher(inner).Close())
		assert.True(t, closed)
	})
}

func TestBackoff_Next(t *testing.T) {
	t.Parallel()

	t.Run("zero value means no delay", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, time.Duration(0), watch.Backoff{}.Next())
	})

	t.Run("stays within band", func(t *testing.T) {
		t.Parallel()

		b := watch.DefaultRetryDelay()
		for range 100 {
			d := b.Next()
			assert.GreaterOrEqual(t, d, 3*time.Second)
			assert.LessOrEqual(t, d, 6*time.Second)
		}
	})
}
