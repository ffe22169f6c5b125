package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.HistoryService = (*LoggingHistoryService)(nil)

// LoggingHistoryService wraps a HistoryService with debug logging.
type LoggingHistoryService struct {
	next   pricewatch.HistoryService
	logger *slog.Logger
}

// NewLoggingHistoryService creates a new LoggingHistoryService.
func NewLoggingHistoryService(next pricewatch.HistoryService, logger *slog.Logger) *LoggingHistoryService {
	return &LoggingHistoryService{next: next, logger: logger}
}

func (s *LoggingHistoryService) FindLatestEntry(ctx context.Context, url string) (entry *pricewatch.HistoryEntry, err error) {
	defer func(begin time.Time) {
		logErr := err
		if pricewatch.ErrorCode(err) == pricewatch.ENOTFOUND {
			logErr = nil
		}
		s.logger.Debug("find latest entry",
			"url", url,
			"found", entry != nil,
			"duration", time.Since(begin),
			"err", logErr,
		)
	}(time.Now())
	return s.next.FindLatestEntry(ctx, url)
}

func (s *LoggingHistoryService) CreateEntry(ctx context.Context, entry *pricewatch.HistoryEntry) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create entry",
			"url", entry.URL,
			"id", entry.ID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateEntry(ctx, entry)
}

func (s *LoggingHistoryService) FindEntries(ctx context.Context, filter pricewatch.HistoryFilter) (entries []*pricewatch.HistoryEntry, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find entries",
			"n", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindEntries(ctx, filter)
}
