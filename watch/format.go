package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pricewatch"
)

// FooterTimeFormat renders capture times in notification footers.
const FooterTimeFormat = "02/01/2006 15:04:05"

// NotAvailable is shown for absent prices.
const NotAvailable = "Not available"

// ColorSummary is the color of compare summaries.
const ColorSummary = 0x2ecc71

// ChangeMessage renders the notification for a detected change.
func ChangeMessage(source pricewatch.Source, url string, product *pricewatch.Product, deltas []pricewatch.PriceDelta) *pricewatch.Message {
	var body strings.Builder
	for _, d := range deltas {
		fmt.Fprintf(&body, "%s **%s** from %s to %s\n",
			directionText(d.Direction()), d.Label, pricewatch.FormatPrice(d.Old), pricewatch.FormatPrice(d.New))
	}

	return &pricewatch.Message{
		Title:  fmt.Sprintf("%s - %s", source.Title(), product.Name),
		URL:    url,
		Body:   body.String(),
		Footer: "Updated at " + product.CapturedAt.Format(FooterTimeFormat),
		Color:  pricewatch.ColorInfo,
	}
}

// SummaryMessage renders the current prices of a checked URL and the
// changes found against history, for on-demand comparisons. Returns nil for
// results that never got a product.
func SummaryMessage(res *pricewatch.CheckResult) *pricewatch.Message {
	if !res.Product.Found() {
		return nil
	}

	var body strings.Builder
	for _, slot := range pricewatch.Slots() {
		fmt.Fprintf(&body, "**%s:** %s\n", res.Labels.Label(slot), formatRaw(res.Product.Price(slot)))
	}
	fmt.Fprintf(&body, "**Date:** %s\n\n", res.Product.CapturedAt.Format(FooterTimeFormat))

	switch {
	case res.Decision == pricewatch.DecisionBaseline:
		body.WriteString("First observation, stored as baseline.")
	case len(res.Deltas) == 0:
		body.WriteString("No price changes detected.")
	default:
		for _, d := range res.Deltas {
			fmt.Fprintf(&body, "%s **%s** from %s to %s\n",
				directionText(d.Direction()), d.Label, pricewatch.FormatPrice(d.Old), pricewatch.FormatPrice(d.New))
		}
	}

	return &pricewatch.Message{
		Title: fmt.Sprintf("%s - %s", res.Source.Title(), res.Product.Name),
		URL:   res.URL,
		Body:  body.String(),
		Color: ColorSummary,
	}
}

func directionText(d pricewatch.Direction) string {
	switch d {
	case pricewatch.DirectionDown:
		return "🔻 Decreased"
	case pricewatch.DirectionUp:
		return "🔺 Increased"
	}
	return "Unchanged"
}

func formatRaw(raw string) string {
	v, ok := pricewatch.NormalizePrice(raw)
	if !ok || !pricewatch.IsPlausiblePrice(v) {
		return NotAvailable
	}
	return pricewatch.FormatPrice(v)
}

// FormatEntryPrice renders a stored price, or NotAvailable when absent.
func FormatEntryPrice(p *int64) string {
	if p == nil {
		return NotAvailable
	}
	return pricewatch.FormatPrice(*p)
}

// computeHash computes a hash of the page using xxhash.
func computeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// formatTime renders t for log lines.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
