package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pricewatch"
	"golang.org/x/net/html"
)

var _ Strategy = (*LabelStrategy)(nil)

// LabelField locates one price by its visible label.
type LabelField struct {
	// Label is matched as a substring of a leaf span's text.
	Label string

	// ValueSelector, when set, selects the first element after the label in
	// document order whose inner span holds the value. When empty the value
	// is the label's next sibling span.
	ValueSelector string
}

// LabelStrategy reads prices that are laid out as label/value pairs inside
// a price container.
type LabelStrategy struct {
	NameSelector      string
	ContainerSelector string
	Fields            [pricewatch.NumSlots]LabelField

	// Currency must appear in a value for it to be accepted. Defaults to "$".
	Currency string
}

// Name returns the strategy's identifier.
func (s *LabelStrategy) Name() string {
	return "dom-label"
}

// Extract returns the name even when the price container is missing, so a
// page without prices is reported as such rather than as unparseable.
func (s *LabelStrategy) Extract(page *Page) *pricewatch.Product {
	product := &pricewatch.Product{Name: text(page.Doc.Selection, s.NameSelector)}

	container := page.Doc.Find(s.ContainerSelector).First()
	if container.Length() == 0 {
		return product
	}

	var order map[*html.Node]int
	for _, slot := range pricewatch.Slots() {
		field := s.Fields[slot]
		if field.Label == "" {
			continue
		}
		label := findLabel(container, field.Label)
		if label.Length() == 0 {
			continue
		}

		var value *goquery.Selection
		if field.ValueSelector == "" {
			value = label.NextAllFiltered("span").First()
		} else {
			if order == nil {
				order = documentOrder(page.Doc)
			}
			value = nextInDocument(page.Doc, order, label, field.ValueSelector).Find("span").First()
		}

		if v := cleanText(value.Text()); strings.Contains(v, s.currency()) {
			product.Prices[slot] = v
		}
	}
	return product
}

func (s *LabelStrategy) currency() string {
	if s.Currency == "" {
		return "$"
	}
	return s.Currency
}

// findLabel returns the first span without element children whose text
// contains label.
func findLabel(container *goquery.Selection, label string) *goquery.Selection {
	return container.Find("span").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.Children().Length() == 0 && strings.Contains(sel.Text(), label)
	}).First()
}

// documentOrder numbers every element of doc in document order.
func documentOrder(doc *goquery.Document) map[*html.Node]int {
	order := make(map[*html.Node]int)
	doc.Find("*").Each(func(i int, sel *goquery.Selection) {
		order[sel.Get(0)] = i
	})
	return order
}

// nextInDocument returns the first element matching selector that starts
// after from in document order.
func nextInDocument(doc *goquery.Document, order map[*html.Node]int, from *goquery.Selection, selector string) *goquery.Selection {
	start := order[from.Get(0)]
	return doc.Find(selector).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return order[sel.Get(0)] > start
	}).First()
}
