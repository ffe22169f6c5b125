package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.ChallengeDetector = (*ChallengeDetector)(nil)

// DefaultChallengeMarkers are matched case-insensitively against the raw page.
var DefaultChallengeMarkers = []string{"captcha"}

// ChallengeDetector recognizes anti-bot pages served instead of a product
// page. It checks raw text markers first, then page titles and elements that
// interstitial challenge pages are known to carry.
type ChallengeDetector struct {
	markers   []string
	titles    []string
	selectors []string
}

// DetectorOption configures a ChallengeDetector.
type DetectorOption func(*ChallengeDetector)

// WithMarkers replaces the raw text markers.
func WithMarkers(markers ...string) DetectorOption {
	return func(d *ChallengeDetector) {
		d.markers = markers
	}
}

// NewChallengeDetector creates a ChallengeDetector with the default markers.
func NewChallengeDetector(opts ...DetectorOption) *ChallengeDetector {
	d := &ChallengeDetector{
		markers: DefaultChallengeMarkers,
		titles: []string{
			"just a moment",
			"attention required",
			"access denied",
		},
		selectors: []string{
			"#challenge-form",
			"#challenge-running",
			".cf-turnstile",
			"#px-captcha",
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsChallenge reports whether html is a challenge page.
func (d *ChallengeDetector) IsChallenge(html string) bool {
	lower := strings.ToLower(html)
	for _, m := range d.markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	title := strings.ToLower(cleanText(doc.Find("title").First().Text()))
	for _, t := range d.titles {
		if title != "" && strings.Contains(title, t) {
			return true
		}
	}

	for _, s := range d.selectors {
		if d.hasSelector(doc, s) {
			return true
		}
	}
	return false
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *ChallengeDetector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
