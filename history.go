package pricewatch

import (
	"context"
	"time"
)

// HistoryEntry is one persisted price observation. Entries are append-only:
// one is written for the first observation of a URL and for every detected
// change after that.
type HistoryEntry struct {
	ID          string           `json:"id"`
	Source      Source           `json:"source"`
	URL         string           `json:"url"`
	ProductName string           `json:"productName"`
	Prices      [NumSlots]*int64 `json:"prices"`
	PageHash    string           `json:"pageHash"`
	CapturedAt  time.Time        `json:"capturedAt"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *HistoryEntry) Validate() error {
	if e.URL == "" {
		return Errorf(EINVALID, "history entry URL required")
	}
	if e.Source == "" {
		return Errorf(EINVALID, "history entry source required")
	}
	if e.ProductName == "" {
		return Errorf(EINVALID, "history entry product name required")
	}
	return nil
}

// Price returns the stored price of a slot, or nil if it was absent.
func (e *HistoryEntry) Price(s Slot) *int64 {
	if !s.Valid() {
		return nil
	}
	return e.Prices[s]
}

// HistoryService represents a service for managing price history.
type HistoryService interface {
	// FindLatestEntry returns the most recent entry for url by capture time.
	// Returns ENOTFOUND if the URL has no history.
	FindLatestEntry(ctx context.Context, url string) (*HistoryEntry, error)

	// CreateEntry appends an entry to the history.
	// ID and CreatedAt are assigned by the store.
	CreateEntry(ctx context.Context, entry *HistoryEntry) error

	// FindEntries retrieves entries matching the filter, newest first.
	FindEntries(ctx context.Context, filter HistoryFilter) ([]*HistoryEntry, error)
}

// HistoryFilter represents a filter for FindEntries.
type HistoryFilter struct {
	URL    *string `json:"url"`
	Source *Source `json:"source"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
