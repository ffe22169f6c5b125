package pricewatch

import "context"

// Extractor fetches and parses product pages of a single source.
type Extractor interface {
	// Fetch retrieves the HTML of a product page.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Parse extracts a Product from html. Parse never fails: when nothing
	// can be extracted it returns a product that is not Found.
	Parse(html string) *Product
}

// ExtractorRegistry maps sources to their extractors.
type ExtractorRegistry interface {
	// Get returns the extractor for a source, or nil if none is registered.
	Get(source Source) Extractor

	// Register adds or replaces the extractor for a source.
	Register(source Source, extractor Extractor)

	// List returns all sources with a registered extractor.
	List() []Source
}
