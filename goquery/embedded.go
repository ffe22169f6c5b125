package goquery

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/fwojciec/pricewatch"
)

var _ Strategy = (*EmbeddedJSONStrategy)(nil)

// EmbeddedJSONStrategy reads the product object a page assigns to a
// JavaScript variable and maps its price books to slots.
type EmbeddedJSONStrategy struct {
	// Marker is the assignment prefix, e.g. "window.productJSON =".
	Marker string

	// PriceBooks maps a price-book identifier to the slot it fills.
	PriceBooks map[string]pricewatch.Slot
}

// Name returns the strategy's identifier.
func (s *EmbeddedJSONStrategy) Name() string {
	return "embedded-json"
}

type embeddedProduct struct {
	Name   string `json:"name"`
	Prices *[]struct {
		PriceBookID string          `json:"priceBookId"`
		Price       json.RawMessage `json:"price"`
	} `json:"prices"`
}

// Extract decodes the embedded object. Objects without a "prices" key do
// not apply.
func (s *EmbeddedJSONStrategy) Extract(page *Page) *pricewatch.Product {
	raw, ok := pricewatch.ExtractAssignedJSON(page.HTML, s.Marker)
	if !ok {
		return nil
	}

	var data embeddedProduct
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	if data.Prices == nil {
		return nil
	}

	product := &pricewatch.Product{Name: cleanText(data.Name)}
	for _, entry := range *data.Prices {
		slot, ok := s.PriceBooks[entry.PriceBookID]
		if !ok || !slot.Valid() {
			continue
		}
		product.Prices[slot] = rawPrice(entry.Price)
	}
	return product
}

// rawPrice renders a JSON price value as a raw price string. Numbers with an
// all-zero fraction lose it, so 12990.0 reads as 12990 rather than 129900
// after digit extraction.
func rawPrice(msg json.RawMessage) string {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return ""
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return trimZeroFraction(string(msg))
}

func trimZeroFraction(num string) string {
	whole, frac, ok := strings.Cut(num, ".")
	if ok && strings.Trim(frac, "0") == "" {
		return whole
	}
	return num
}
