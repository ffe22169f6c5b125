package pricewatch

import (
	"strconv"
	"strings"
)

// MaxPlausiblePrice is the ceiling above which a normalized price is treated
// as a parsing artifact (for example two prices glued together) and dropped.
const MaxPlausiblePrice int64 = 1_000_000_000_000_000

// ParsePrice converts a raw, human-formatted price string such as "$1.234.567"
// or "CLP 12,990" into whole currency units. Every ASCII digit is kept and
// everything else is discarded, so dots and commas act as thousands
// separators only.
//
// Returns EINVALID if the string is empty, contains no digits, or the digits
// do not fit in an int64.
func ParsePrice(raw string) (int64, error) {
	if raw == "" {
		return 0, Errorf(EINVALID, "empty price")
	}

	var digits strings.Builder
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			digits.WriteByte(c)
		}
	}
	if digits.Len() == 0 {
		return 0, Errorf(EINVALID, "no digits in price %q", raw)
	}

	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, Errorf(EINVALID, "price %q out of range", raw)
	}
	return v, nil
}

// NormalizePrice is the total form of ParsePrice: it never fails and reports
// absence with ok=false.
func NormalizePrice(raw string) (v int64, ok bool) {
	v, err := ParsePrice(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsPlausiblePrice reports whether v is below MaxPlausiblePrice.
func IsPlausiblePrice(v int64) bool {
	return v >= 0 && v < MaxPlausiblePrice
}

// FormatPrice renders v with a dollar sign and dot thousands separators,
// e.g. 1234567 becomes "$1.234.567".
func FormatPrice(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
