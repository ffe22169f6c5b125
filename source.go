package pricewatch

import (
	"net/url"
	"strings"
)

// Source identifies a supported retailer.
type Source string

// Supported sources.
const (
	SourceParis     Source = "paris"
	SourceFalabella Source = "falabella"
	SourceSPDigital Source = "spdigital"
)

// Sources returns every supported source in display order.
func Sources() []Source {
	return []Source{SourceParis, SourceFalabella, SourceSPDigital}
}

// ParseSource normalizes a user-supplied source identifier. Case and
// whitespace are ignored, so "SP Digital" and "spdigital" are the same source.
// Returns EINVALID for anything outside the supported set.
func ParseSource(s string) (Source, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for _, src := range Sources() {
		if string(src) == key {
			return src, nil
		}
	}
	return "", Errorf(EINVALID, "unsupported source %q", s)
}

// SourceFromURL derives the source from a product URL host by dropping a
// leading "www." and taking the first label, e.g. https://www.paris.cl/x
// belongs to SourceParis.
func SourceFromURL(rawURL string) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", Errorf(EINVALID, "invalid product URL %q", rawURL)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	return ParseSource(label)
}

// Title returns the display name of the source.
func (s Source) Title() string {
	switch s {
	case SourceParis:
		return "Paris"
	case SourceFalabella:
		return "Falabella"
	case SourceSPDigital:
		return "SP Digital"
	}
	return string(s)
}

// LabelMapping names the fields of a Product for a given source. Slot
// meaning differs per retailer, so price1 is the loyalty-card price at Paris
// and Falabella but the list price at SP Digital.
type LabelMapping struct {
	Name      string
	Prices    [NumSlots]string
	Timestamp string
}

// Label returns the human label of a price slot.
func (m LabelMapping) Label(s Slot) string {
	if !s.Valid() {
		return ""
	}
	return m.Prices[s]
}

var labelMappings = map[Source]LabelMapping{
	SourceParis: {
		Name:      "Product Name",
		Prices:    [NumSlots]string{"Cencosud Price", "Internet Price", "Normal Price"},
		Timestamp: "Timestamp",
	},
	SourceFalabella: {
		Name:      "Product Name",
		Prices:    [NumSlots]string{"CMR Price", "Internet Price", "Normal Price"},
		Timestamp: "Timestamp",
	},
	SourceSPDigital: {
		Name:      "Product Name",
		Prices:    [NumSlots]string{"Normal Price", "Transfer Price", "Other Methods Price"},
		Timestamp: "Timestamp",
	},
}

// Labels returns the label mapping for a source.
// Returns EINVALID for unsupported sources.
func Labels(s Source) (LabelMapping, error) {
	m, ok := labelMappings[s]
	if !ok {
		return LabelMapping{}, Errorf(EINVALID, "no labels for source %q", s)
	}
	return m, nil
}
