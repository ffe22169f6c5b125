package goquery

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pricewatch"
)

var _ Strategy = (*JSONLDStrategy)(nil)

// JSONLDStrategy reads the first schema.org Product declared in a
// <script type="application/ld+json"> block and maps its offers to slots
// by position.
type JSONLDStrategy struct{}

// Name returns the strategy's identifier.
func (s *JSONLDStrategy) Name() string {
	return "json-ld"
}

// Extract scans every JSON-LD block in document order. Blocks that fail to
// decode are skipped.
func (s *JSONLDStrategy) Extract(page *Page) *pricewatch.Product {
	var product *pricewatch.Product
	page.Doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		dec := json.NewDecoder(strings.NewReader(sel.Text()))
		dec.UseNumber()

		var data any
		if err := dec.Decode(&data); err != nil {
			return true
		}
		if obj := findProduct(data); obj != nil {
			product = productFromLD(obj)
			return false
		}
		return true
	})
	return product
}

// findProduct returns the first object typed Product in a top-level object,
// array, or @graph list.
func findProduct(data any) map[string]any {
	switch v := data.(type) {
	case map[string]any:
		if isProductType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findProduct(graph)
		}
	case []any:
		for _, item := range v {
			if obj := findProduct(item); obj != nil {
				return obj
			}
		}
	}
	return nil
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func productFromLD(obj map[string]any) *pricewatch.Product {
	name, _ := obj["name"].(string)
	product := &pricewatch.Product{Name: cleanText(name)}

	var offers []any
	switch v := obj["offers"].(type) {
	case []any:
		offers = v
	case map[string]any:
		offers = []any{v}
	}

	for i, offer := range offers {
		if i >= pricewatch.NumSlots {
			break
		}
		o, ok := offer.(map[string]any)
		if !ok {
			continue
		}
		product.Prices[i] = ldPrice(o["price"])
	}
	return product
}

func ldPrice(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case json.Number:
		return trimZeroFraction(p.String())
	}
	return ""
}
