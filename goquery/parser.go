// Package goquery implements pricewatch.Extractor for the supported
// retailers using goquery for HTML traversal.
package goquery

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pricewatch"
)

// Page is a product page prepared for extraction.
type Page struct {
	HTML string
	Doc  *goquery.Document
}

// Strategy is one way of reading a product out of a page.
type Strategy interface {
	// Name returns the strategy's identifier.
	Name() string

	// Extract returns the product found on the page, or nil when the
	// strategy does not apply. A product without a name means the same.
	Extract(page *Page) *pricewatch.Product
}

// Parser runs an ordered chain of strategies and keeps the first result
// that carries a product name.
type Parser struct {
	strategies []Strategy
	now        func() time.Time
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithClock sets the function used to stamp CapturedAt.
// Defaults to time.Now in UTC.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		p.now = now
	}
}

// NewParser creates a Parser that tries strategies in order.
func NewParser(strategies []Strategy, opts ...ParserOption) *Parser {
	p := &Parser{
		strategies: strategies,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts a product from html. It never fails: when no strategy
// finds a name the returned product is empty.
func (p *Parser) Parse(html string) *pricewatch.Product {
	at := p.now()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return pricewatch.EmptyProduct(at)
	}
	page := &Page{HTML: html, Doc: doc}

	for _, s := range p.strategies {
		product := s.Extract(page)
		if !product.Found() {
			continue
		}
		product.CapturedAt = at
		return product
	}
	return pricewatch.EmptyProduct(at)
}

// Strategies returns the names of the configured strategies in order.
func (p *Parser) Strategies() []string {
	names := make([]string, len(p.strategies))
	for i, s := range p.strategies {
		names[i] = s.Name()
	}
	return names
}

// text returns the trimmed text of the first element matching selector.
func text(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return cleanText(sel.Find(selector).First().Text())
}

// cleanText collapses runs of whitespace and trims the result.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
