package goquery

import "github.com/fwojciec/pricewatch"

// ParisMarker is the assignment that carries the Paris product object.
const ParisMarker = "window.productJSON ="

// NewParisParser creates the Paris parser: embedded product JSON first, then
// JSON-LD, then plain selectors.
func NewParisParser(opts ...ParserOption) *Parser {
	return NewParser([]Strategy{
		&EmbeddedJSONStrategy{
			Marker: ParisMarker,
			PriceBooks: map[string]pricewatch.Slot{
				"clp-cencosud-prices": pricewatch.Slot1,
				"clp-internet-prices": pricewatch.Slot2,
				"clp-list-prices":     pricewatch.Slot3,
			},
		},
		&JSONLDStrategy{},
		&SelectorStrategy{
			NameSelector: `h1[class*="product-name"], .product-detail__name`,
			PriceSelectors: [pricewatch.NumSlots]string{
				"",
				"",
				".product-detail__price--list .price",
			},
		},
	}, opts...)
}

// NewFalabellaParser creates the Falabella parser, which reads the price
// tiers from data attributes.
func NewFalabellaParser(opts ...ParserOption) *Parser {
	return NewParser([]Strategy{
		&AttributeStrategy{
			NameSelector: `h1[class*="product-name"]`,
			ListSelector: `ol[class*="pdp-prices"]`,
			ItemSelector: "li",
			Attributes: [pricewatch.NumSlots][]string{
				{"data-cmr-price"},
				{"data-internet-price", "data-event-price"},
				{"data-normal-price"},
			},
		},
	}, opts...)
}

// NewSPDigitalParser creates the SP Digital parser, which reads labeled
// payment-method prices.
func NewSPDigitalParser(opts ...ParserOption) *Parser {
	return NewParser([]Strategy{
		&LabelStrategy{
			NameSelector:      `h1[class*="product-detail-module--productName"]`,
			ContainerSelector: `div[class*="product-detail-module--priceContainer"]`,
			Fields: [pricewatch.NumSlots]LabelField{
				{Label: "Normal"},
				{Label: "Pago con transferencia", ValueSelector: `span[class*="product-detail-module--updatingPriceContainer"]`},
				{Label: "Otros medios de pago", ValueSelector: `span[class*="product-detail-module--updatingPriceContainer"]`},
			},
		},
	}, opts...)
}

// NewSourceParser returns the parser for a source.
// Returns EINVALID for unsupported sources.
func NewSourceParser(source pricewatch.Source, opts ...ParserOption) (*Parser, error) {
	switch source {
	case pricewatch.SourceParis:
		return NewParisParser(opts...), nil
	case pricewatch.SourceFalabella:
		return NewFalabellaParser(opts...), nil
	case pricewatch.SourceSPDigital:
		return NewSPDigitalParser(opts...), nil
	}
	return nil, pricewatch.Errorf(pricewatch.EINVALID, "no parser for source %q", source)
}
