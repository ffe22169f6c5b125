package pricewatch

import (
	"fmt"
	"time"
)

// NumSlots is the number of price slots a product carries.
const NumSlots = 3

// Slot indexes a price slot. Which price a slot holds is decided per source
// by its LabelMapping.
type Slot int

// Price slots.
const (
	Slot1 Slot = iota
	Slot2
	Slot3
)

// Slots returns all price slots in order.
func Slots() []Slot {
	return []Slot{Slot1, Slot2, Slot3}
}

// Valid reports whether s is one of the defined slots.
func (s Slot) Valid() bool {
	return s >= Slot1 && s <= Slot3
}

// String returns the storage name of the slot ("price1", "price2", "price3").
func (s Slot) String() string {
	return fmt.Sprintf("price%d", int(s)+1)
}

// Product is one snapshot extracted from a product page. Prices hold the raw
// strings as found on the page; an empty string means the slot was absent.
type Product struct {
	Name       string           `json:"name"`
	Prices     [NumSlots]string `json:"prices"`
	CapturedAt time.Time        `json:"capturedAt"`
}

// EmptyProduct returns the result of a failed extraction.
func EmptyProduct(at time.Time) *Product {
	return &Product{CapturedAt: at}
}

// Found reports whether extraction produced a product name. A product that
// was not found must never be compared or stored.
func (p *Product) Found() bool {
	return p != nil && p.Name != ""
}

// Price returns the raw price string of a slot.
func (p *Product) Price(s Slot) string {
	if !s.Valid() {
		return ""
	}
	return p.Prices[s]
}

// HasPrice reports whether at least one slot normalizes to a price.
func (p *Product) HasPrice() bool {
	for _, raw := range p.Prices {
		if _, ok := NormalizePrice(raw); ok {
			return true
		}
	}
	return false
}
