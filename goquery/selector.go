package goquery

import "github.com/fwojciec/pricewatch"

var _ Strategy = (*SelectorStrategy)(nil)

// SelectorStrategy reads the name and prices from plain CSS selectors. It is
// the last resort for pages whose structured data is missing.
type SelectorStrategy struct {
	NameSelector   string
	PriceSelectors [pricewatch.NumSlots]string
}

// Name returns the strategy's identifier.
func (s *SelectorStrategy) Name() string {
	return "dom-selector"
}

// Extract reads each configured selector.
func (s *SelectorStrategy) Extract(page *Page) *pricewatch.Product {
	product := &pricewatch.Product{Name: text(page.Doc.Selection, s.NameSelector)}
	for _, slot := range pricewatch.Slots() {
		product.Prices[slot] = text(page.Doc.Selection, s.PriceSelectors[slot])
	}
	return product
}
