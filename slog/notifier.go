package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier logs every notification. With a nil next it only logs,
// which is how the watcher runs without a webhook.
type LoggingNotifier struct {
	next   pricewatch.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next pricewatch.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Notify logs msg and delegates.
func (n *LoggingNotifier) Notify(ctx context.Context, msg *pricewatch.Message) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		n.logger.Log(ctx, level, "notify",
			"title", msg.Title,
			"url", msg.URL,
			"body", msg.Body,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	if n.next == nil {
		return nil
	}
	return n.next.Notify(ctx, msg)
}
