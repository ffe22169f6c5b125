package mock

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.TrackedURLService = (*TrackedURLService)(nil)

// TrackedURLService is a mock implementation of pricewatch.TrackedURLService.
type TrackedURLService struct {
	FindURLsBySourceFn func(ctx context.Context, source pricewatch.Source) ([]string, error)
	AddURLFn           func(ctx context.Context, source pricewatch.Source, url string) (bool, error)
	FindAllURLsFn      func(ctx context.Context) ([]pricewatch.SourceURLs, error)
	UpdateURLFn        func(ctx context.Context, source pricewatch.Source, oldURL, newURL string) error
	DeleteURLFn        func(ctx context.Context, source pricewatch.Source, url string) error
}

func (s *TrackedURLService) FindURLsBySource(ctx context.Context, source pricewatch.Source) ([]string, error) {
	return s.FindURLsBySourceFn(ctx, source)
}

func (s *TrackedURLService) AddURL(ctx context.Context, source pricewatch.Source, url string) (bool, error) {
	return s.AddURLFn(ctx, source, url)
}

func (s *TrackedURLService) FindAllURLs(ctx context.Context) ([]pricewatch.SourceURLs, error) {
	return s.FindAllURLsFn(ctx)
}

func (s *TrackedURLService) UpdateURL(ctx context.Context, source pricewatch.Source, oldURL, newURL string) error {
	return s.UpdateURLFn(ctx, source, oldURL, newURL)
}

func (s *TrackedURLService) DeleteURL(ctx context.Context, source pricewatch.Source, url string) error {
	return s.DeleteURLFn(ctx, source, url)
}
