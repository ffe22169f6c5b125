package watch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/mock"
	"github.com/fwojciec/pricewatch/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	t.Run("runs on start and hands over the report", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls atomic.Int32
		checker := &mock.PriceChecker{
			CheckAllFn: func(_ context.Context) (*pricewatch.CheckReport, error) {
				calls.Add(1)
				return &pricewatch.CheckReport{}, nil
			},
		}
		reports := make(chan *pricewatch.CheckReport, 1)
		s := watch.NewScheduler(checker,
			watch.WithInterval(time.Hour),
			watch.WithRunOnStart(),
			watch.WithReportHandler(func(r *pricewatch.CheckReport) { reports <- r }),
		)

		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		select {
		case r := <-reports:
			assert.Equal(t, "nothing to compare", r.Summary())
		case <-time.After(5 * time.Second):
			t.Fatal("no report delivered")
		}

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("scheduler did not stop")
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("stops immediately when nothing is due", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		checker := &mock.PriceChecker{
			CheckAllFn: func(_ context.Context) (*pricewatch.CheckReport, error) {
				t.Error("unexpected check")
				return nil, nil
			},
		}

		err := watch.NewScheduler(checker, watch.WithInterval(time.Hour)).Run(ctx)
		require.NoError(t, err)
	})

	t.Run("failed run skips report handler", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		called := make(chan struct{})
		checker := &mock.PriceChecker{
			CheckAllFn: func(_ context.Context) (*pricewatch.CheckReport, error) {
				defer close(called)
				return nil, errors.New("database is locked")
			},
		}
		var reported atomic.Bool
		s := watch.NewScheduler(checker,
			watch.WithInterval(time.Hour),
			watch.WithRunOnStart(),
			watch.WithReportHandler(func(*pricewatch.CheckReport) { reported.Store(true) }),
		)

		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		select {
		case <-called:
		case <-time.After(5 * time.Second):
			t.Fatal("checker not called")
		}
		cancel()
		require.NoError(t, <-done)
		assert.False(t, reported.Load())
	})
}
