package mock

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of pricewatch.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, msg *pricewatch.Message) error
}

func (n *Notifier) Notify(ctx context.Context, msg *pricewatch.Message) error {
	return n.NotifyFn(ctx, msg)
}

var _ pricewatch.PriceChecker = (*PriceChecker)(nil)

// PriceChecker is a mock implementation of pricewatch.PriceChecker.
type PriceChecker struct {
	CheckAllFn func(ctx context.Context) (*pricewatch.CheckReport, error)
}

func (c *PriceChecker) CheckAll(ctx context.Context) (*pricewatch.CheckReport, error) {
	return c.CheckAllFn(ctx)
}
