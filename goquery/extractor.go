package goquery

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.Extractor = (*Extractor)(nil)

// Extractor binds a fetcher to a source parser.
type Extractor struct {
	fetcher pricewatch.Fetcher
	parser  *Parser
}

// NewExtractor creates an Extractor.
func NewExtractor(fetcher pricewatch.Fetcher, parser *Parser) *Extractor {
	return &Extractor{fetcher: fetcher, parser: parser}
}

// Fetch delegates to the fetcher.
func (e *Extractor) Fetch(ctx context.Context, url string) (string, error) {
	return e.fetcher.Fetch(ctx, url)
}

// Parse delegates to the parser.
func (e *Extractor) Parse(html string) *pricewatch.Product {
	return e.parser.Parse(html)
}
