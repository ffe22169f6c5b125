package goquery

import "github.com/fwojciec/pricewatch"

var _ pricewatch.ExtractorRegistry = (*Registry)(nil)

// Registry maps sources to their extractors. It is populated once at
// startup and read concurrently afterwards.
type Registry struct {
	extractors map[pricewatch.Source]pricewatch.Extractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[pricewatch.Source]pricewatch.Extractor),
	}
}

// NewSourceRegistry creates a Registry with an extractor for every supported
// source, all sharing fetcher.
func NewSourceRegistry(fetcher pricewatch.Fetcher, opts ...ParserOption) *Registry {
	r := NewRegistry()
	for _, source := range pricewatch.Sources() {
		parser, err := NewSourceParser(source, opts...)
		if err != nil {
			continue
		}
		r.Register(source, NewExtractor(fetcher, parser))
	}
	return r
}

// Get returns the extractor for a source.
// Returns nil if no extractor is registered for the source.
func (r *Registry) Get(source pricewatch.Source) pricewatch.Extractor {
	return r.extractors[source]
}

// Register adds an extractor for a source.
// If an extractor is already registered for the source, it is replaced.
func (r *Registry) Register(source pricewatch.Source, extractor pricewatch.Extractor) {
	r.extractors[source] = extractor
}

// List returns all registered sources in the canonical source order.
func (r *Registry) List() []pricewatch.Source {
	sources := make([]pricewatch.Source, 0, len(r.extractors))
	for _, s := range pricewatch.Sources() {
		if _, ok := r.extractors[s]; ok {
			sources = append(sources, s)
		}
	}
	return sources
}
