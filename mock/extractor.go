package mock

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pricewatch.Extractor.
type Extractor struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	ParseFn func(html string) *pricewatch.Product
}

func (e *Extractor) Fetch(ctx context.Context, url string) (string, error) {
	return e.FetchFn(ctx, url)
}

func (e *Extractor) Parse(html string) *pricewatch.Product {
	return e.ParseFn(html)
}

var _ pricewatch.ExtractorRegistry = (*ExtractorRegistry)(nil)

// ExtractorRegistry is a mock implementation of pricewatch.ExtractorRegistry.
type ExtractorRegistry struct {
	GetFn      func(source pricewatch.Source) pricewatch.Extractor
	RegisterFn func(source pricewatch.Source, extractor pricewatch.Extractor)
	ListFn     func() []pricewatch.Source
}

func (r *ExtractorRegistry) Get(source pricewatch.Source) pricewatch.Extractor {
	return r.GetFn(source)
}

func (r *ExtractorRegistry) Register(source pricewatch.Source, extractor pricewatch.Extractor) {
	r.RegisterFn(source, extractor)
}

func (r *ExtractorRegistry) List() []pricewatch.Source {
	return r.ListFn()
}
