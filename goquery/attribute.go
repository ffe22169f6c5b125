package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pricewatch"
)

var _ Strategy = (*AttributeStrategy)(nil)

// AttributeStrategy reads prices from data attributes on the items of a
// price list.
type AttributeStrategy struct {
	NameSelector string

	// ListSelector locates the price list. When it matches nothing the whole
	// document is searched, which covers older layouts without the list.
	ListSelector string

	// ItemSelector selects the price items inside the list.
	ItemSelector string

	// Attributes lists, per slot, the attributes that may carry its price.
	// The first attribute present on an item wins.
	Attributes [pricewatch.NumSlots][]string
}

// Name returns the strategy's identifier.
func (s *AttributeStrategy) Name() string {
	return "dom-attribute"
}

// Extract reads each item once and assigns it to the first slot whose
// attribute it carries. Earlier items take precedence.
func (s *AttributeStrategy) Extract(page *Page) *pricewatch.Product {
	product := &pricewatch.Product{Name: text(page.Doc.Selection, s.NameSelector)}

	scope := page.Doc.Selection
	if s.ListSelector != "" {
		if list := page.Doc.Find(s.ListSelector).First(); list.Length() > 0 {
			scope = list
		}
	}

	scope.Find(s.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		slot, value, ok := s.match(item)
		if !ok || product.Prices[slot] != "" {
			return
		}
		product.Prices[slot] = value
	})
	return product
}

func (s *AttributeStrategy) match(item *goquery.Selection) (pricewatch.Slot, string, bool) {
	for _, slot := range pricewatch.Slots() {
		for _, attr := range s.Attributes[slot] {
			if v, ok := item.Attr(attr); ok && v != "" {
				return slot, cleanText(v), true
			}
		}
	}
	return 0, "", false
}
