package mock

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of pricewatch.HistoryService.
type HistoryService struct {
	FindLatestEntryFn func(ctx context.Context, url string) (*pricewatch.HistoryEntry, error)
	CreateEntryFn     func(ctx context.Context, entry *pricewatch.HistoryEntry) error
	FindEntriesFn     func(ctx context.Context, filter pricewatch.HistoryFilter) ([]*pricewatch.HistoryEntry, error)
}

func (s *HistoryService) FindLatestEntry(ctx context.Context, url string) (*pricewatch.HistoryEntry, error) {
	return s.FindLatestEntryFn(ctx, url)
}

func (s *HistoryService) CreateEntry(ctx context.Context, entry *pricewatch.HistoryEntry) error {
	return s.CreateEntryFn(ctx, entry)
}

func (s *HistoryService) FindEntries(ctx context.Context, filter pricewatch.HistoryFilter) ([]*pricewatch.HistoryEntry, error) {
	return s.FindEntriesFn(ctx, filter)
}
