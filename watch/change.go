package watch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/pricewatch"
)

// Outcome is the result of ChangeDetector.Decide.
type Outcome struct {
	Decision pricewatch.Decision

	// Entry is the candidate history entry built from the product with
	// normalized, plausibility-checked prices. It is what gets compared and,
	// for Baseline and Change, stored.
	Entry *pricewatch.HistoryEntry

	// Previous is the latest stored entry, nil for Baseline and Rejected.
	Previous *pricewatch.HistoryEntry

	// Deltas lists the differing slots for Change.
	Deltas []pricewatch.PriceDelta
}

// ChangeDetector decides whether a freshly extracted product is new,
// unchanged or changed relative to the latest stored entry for its URL.
type ChangeDetector struct {
	history pricewatch.HistoryService
	logger  *slog.Logger
}

// NewChangeDetector creates a ChangeDetector backed by history.
func NewChangeDetector(history pricewatch.HistoryService, logger *slog.Logger) *ChangeDetector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChangeDetector{history: history, logger: logger}
}

// Decide classifies product. Returns EEMPTY for a product without a name,
// which is never compared. Storage lookup failures are returned as is.
func (d *ChangeDetector) Decide(ctx context.Context, source pricewatch.Source, url string, product *pricewatch.Product, labels pricewatch.LabelMapping) (*Outcome, error) {
	if !product.Found() {
		return nil, pricewatch.Errorf(pricewatch.EEMPTY, "no product name extracted from %s", url)
	}

	entry := d.candidate(source, url, product, labels)
	if !hasAnyPrice(entry) {
		d.logger.Info("no valid price", "url", url, "product", product.Name)
		return &Outcome{Decision: pricewatch.DecisionRejected, Entry: entry}, nil
	}

	latest, err := d.history.FindLatestEntry(ctx, url)
	if pricewatch.ErrorCode(err) == pricewatch.ENOTFOUND {
		return &Outcome{Decision: pricewatch.DecisionBaseline, Entry: entry}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest entry for %s: %w", url, err)
	}

	outcome := &Outcome{Decision: pricewatch.DecisionDuplicate, Entry: entry, Previous: latest}
	for _, slot := range pricewatch.Slots() {
		prev, cur := latest.Price(slot), entry.Price(slot)
		if prev != nil && cur == nil {
			d.logger.Debug("price disappeared",
				"url", url,
				"slot", slot.String(),
				"label", labels.Label(slot),
				"previous", *prev,
			)
		}
		if prev == nil || cur == nil || *prev == *cur {
			continue
		}
		outcome.Deltas = append(outcome.Deltas, pricewatch.PriceDelta{
			Slot:  slot,
			Label: labels.Label(slot),
			Old:   *prev,
			New:   *cur,
		})
	}
	if len(outcome.Deltas) > 0 {
		outcome.Decision = pricewatch.DecisionChange
	}
	return outcome, nil
}

// Store appends the candidate entry for Baseline and Change outcomes and
// does nothing otherwise.
func (d *ChangeDetector) Store(ctx context.Context, outcome *Outcome) error {
	if outcome == nil || !outcome.Decision.Stores() {
		return nil
	}
	if err := d.history.CreateEntry(ctx, outcome.Entry); err != nil {
		return fmt.Errorf("storing entry for %s: %w", outcome.Entry.URL, err)
	}
	return nil
}

// candidate builds the entry that would be stored for product.
func (d *ChangeDetector) candidate(source pricewatch.Source, url string, product *pricewatch.Product, labels pricewatch.LabelMapping) *pricewatch.HistoryEntry {
	entry := &pricewatch.HistoryEntry{
		Source:      source,
		URL:         url,
		ProductName: product.Name,
		CapturedAt:  product.CapturedAt,
	}
	for _, slot := range pricewatch.Slots() {
		raw := product.Price(slot)
		if raw == "" {
			continue
		}
		v, err := pricewatch.ParsePrice(raw)
		if err != nil {
			d.logger.Debug("price normalization failed",
				"url", url,
				"label", labels.Label(slot),
				"raw", raw,
				"err", pricewatch.ErrorMessage(err),
			)
			continue
		}
		if !pricewatch.IsPlausiblePrice(v) {
			d.logger.Debug("implausible price dropped",
				"url", url,
				"label", labels.Label(slot),
				"raw", raw,
			)
			continue
		}
		entry.Prices[slot] = &v
	}
	return entry
}

func hasAnyPrice(e *pricewatch.HistoryEntry) bool {
	for _, p := range e.Prices {
		if p != nil {
			return true
		}
	}
	return false
}
