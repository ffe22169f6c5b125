package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pricewatch"
)

// Ensure LoggingRegistry implements pricewatch.ExtractorRegistry.
var _ pricewatch.ExtractorRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps an ExtractorRegistry so that every extractor it hands
// out logs its parse results.
type LoggingRegistry struct {
	next   pricewatch.ExtractorRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next pricewatch.ExtractorRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Get returns the wrapped extractor for source, or nil if there is none.
func (r *LoggingRegistry) Get(source pricewatch.Source) pricewatch.Extractor {
	e := r.next.Get(source)
	if e == nil {
		return nil
	}
	return &LoggingExtractor{next: e, source: source, logger: r.logger}
}

// Register delegates to the wrapped registry.
func (r *LoggingRegistry) Register(source pricewatch.Source, extractor pricewatch.Extractor) {
	r.next.Register(source, extractor)
}

// List delegates to the wrapped registry.
func (r *LoggingRegistry) List() []pricewatch.Source {
	return r.next.List()
}

// LoggingExtractor logs what an extractor found in each page.
type LoggingExtractor struct {
	next   pricewatch.Extractor
	source pricewatch.Source
	logger *slog.Logger
}

// Fetch delegates to the wrapped extractor.
func (e *LoggingExtractor) Fetch(ctx context.Context, url string) (string, error) {
	return e.next.Fetch(ctx, url)
}

// Parse logs the product name and the number of prices found.
func (e *LoggingExtractor) Parse(html string) *pricewatch.Product {
	begin := time.Now()
	p := e.next.Parse(html)

	name := "(none)"
	prices := 0
	if p.Found() {
		name = p.Name
	}
	if p != nil {
		for _, raw := range p.Prices {
			if raw != "" {
				prices++
			}
		}
	}
	e.logger.Debug("parse",
		"source", e.source,
		"name", name,
		"prices", prices,
		"duration", time.Since(begin),
	)
	return p
}
