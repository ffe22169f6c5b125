package pricewatch

import "context"

// SourceURLs groups the tracked URLs of one source in insertion order.
type SourceURLs struct {
	Source Source   `json:"source"`
	URLs   []string `json:"urls"`
}

// TrackedURLService represents a service for managing the set of watched URLs.
type TrackedURLService interface {
	// FindURLsBySource returns the URLs tracked for source in insertion order.
	FindURLsBySource(ctx context.Context, source Source) ([]string, error)

	// AddURL tracks url under source. Reports false if it was already tracked.
	AddURL(ctx context.Context, source Source, url string) (bool, error)

	// FindAllURLs returns every source that has at least one tracked URL.
	FindAllURLs(ctx context.Context) ([]SourceURLs, error)

	// UpdateURL replaces oldURL with newURL, keeping its position.
	// Returns ENOTFOUND if oldURL is not tracked and ECONFLICT if newURL is.
	UpdateURL(ctx context.Context, source Source, oldURL, newURL string) error

	// DeleteURL stops tracking url. Returns ENOTFOUND if it is not tracked.
	DeleteURL(ctx context.Context, source Source, url string) error
}
