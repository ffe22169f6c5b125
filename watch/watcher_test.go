package watch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/mock"
	"github.com/fwojciec/pricewatch/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryHistory is an append-only history backed by a slice.
type memoryHistory struct {
	mu        sync.Mutex
	entries   []*pricewatch.HistoryEntry
	createErr error
}

func (h *memoryHistory) service() *mock.HistoryService {
	return &mock.HistoryService{
		FindLatestEntryFn: func(_ context.Context, url string) (*pricewatch.HistoryEntry, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i := len(h.entries) - 1; i >= 0; i-- {
				if h.entries[i].URL == url {
					return h.entries[i], nil
				}
			}
			return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "no history")
		},
		CreateEntryFn: func(_ context.Context, e *pricewatch.HistoryEntry) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.createErr != nil {
				return h.createErr
			}
			h.entries = append(h.entries, e)
			return nil
		},
	}
}

func (h *memoryHistory) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func trackedURLs(groups ...pricewatch.SourceURLs) *mock.TrackedURLService {
	return &mock.TrackedURLService{
		FindAllURLsFn: func(_ context.Context) ([]pricewatch.SourceURLs, error) {
			return groups, nil
		},
	}
}

// stubExtractor serves one product per URL.
func stubExtractor(products map[string]*pricewatch.Product) *mock.Extractor {
	return &mock.Extractor{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if _, ok := products[url]; !ok {
				return "", pricewatch.Errorf(pricewatch.EEXHAUSTED, "failed to fetch %s", url)
			}
			return url, nil
		},
		ParseFn: func(html string) *pricewatch.Product {
			p := *products[html]
			return &p
		},
	}
}

func registryFor(source pricewatch.Source, ext pricewatch.Extractor) *mock.ExtractorRegistry {
	return &mock.ExtractorRegistry{
		GetFn: func(s pricewatch.Source) pricewatch.Extractor {
			if s == source {
				return ext
			}
			return nil
		},
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []*pricewatch.Message
	err  error
}

func (n *recordingNotifier) notifier() *mock.Notifier {
	return &mock.Notifier{
		NotifyFn: func(_ context.Context, msg *pricewatch.Message) error {
			n.mu.Lock()
			defer n.mu.Unlock()
			n.msgs = append(n.msgs, msg)
			return n.err
		},
	}
}

func TestWatcher_CheckAll(t *testing.T) {
	t.Parallel()

	capturedAt := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

	t.Run("baseline then change end to end", func(t *testing.T) {
		t.Parallel()

		products := map[string]*pricewatch.Product{
			watchURL: {Name: "Watch", Prices: [3]string{"$100.000", "$90.000", ""}, CapturedAt: capturedAt},
		}
		history := &memoryHistory{}
		notes := &recordingNotifier{}
		w := &watch.Watcher{
			URLs:       trackedURLs(pricewatch.SourceURLs{Source: pricewatch.SourceParis, URLs: []string{watchURL}}),
			Extractors: registryFor(pricewatch.SourceParis, stubExtractor(products)),
			Detector:   watch.NewChangeDetector(history.service(), nil),
			Notifier:   notes.notifier(),
		}

		report, err := w.CheckAll(context.Background())
		require.NoError(t, err)
		require.Len(t, report.Results, 1)
		assert.Equal(t, pricewatch.DecisionBaseline, report.Results[0].Decision)
		assert.True(t, report.Results[0].Stored)
		assert.Empty(t, notes.msgs, "baseline is stored silently")
		assert.Equal(t, 1, history.len())

		products[watchURL] = &pricewatch.Product{Name: "Watch", Prices: [3]string{"$100.000", "$85.000", ""}, CapturedAt: capturedAt.Add(2 * time.Hour)}

		report, err = w.CheckAll(context.Background())
		require.NoError(t, err)
		res := report.Results[0]
		assert.Equal(t, pricewatch.DecisionChange, res.Decision)
		assert.Equal(t, pricewatch.StageDone, res.Stage)
		assert.True(t, res.Stored)
		assert.True(t, res.Notified)

		require.Len(t, notes.msgs, 1)
		assert.Equal(t, "Paris - Watch", notes.msgs[0].Title)
		assert.Contains(t, notes.msgs[0].Body, "Decreased **Internet Price** from $90.000 to $85.000")

		require.Equal(t, 2, history.len())
		assert.Equal(t, ptr(90000), history.entries[0].Prices[pricewatch.Slot2], "old entry remains")
		assert.Equal(t, ptr(85000), history.entries[1].Prices[pricewatch.Slot2])
		assert.Equal(t, ptr(100000), history.entries[1].Prices[pricewatch.Slot1])
		assert.NotEmpty(t, history.entries[1].PageHash)
	})

	t.Run("duplicate is neither stored nor notified", func(t *testing.T) {
		t.Parallel()

		products := map[string]*pricewatch.Product{
			watchURL: {Name: "Watch", Prices: [3]string{"$100.000", "", ""}, CapturedAt: capturedAt},
		}
		history := &memoryHistory{entries: []*pricewatch.HistoryEntry{{URL: watchURL, Prices: [3]*int64{ptr(100000), nil, nil}}}}
		notes := &recordingNotifier{}
		w := &watch.Watcher{
			URLs:       trackedURLs(pricewatch.SourceURLs{Source: pricewatch.SourceParis, URLs: []string{watchURL}}),
			Extractors: registryFor(pricewatch.SourceParis, stubExtractor(products)),
			Detector:   watch.NewChangeDetector(history.service(), nil),
			Notifier:   notes.notifier(),
		}

		report, err := w.CheckAll(context.Background())

		require.NoError(t, err)
		assert.Equal(t, pricewatch.DecisionDuplicate, report.Results[0].Decision)
		assert.Equal(t, 1, history.len())
		assert.Empty(t, notes.msgs)
	})

	t.Run("failed URL does not stop the batch", func(t *testing.T) {
		t.Parallel()

		good := "https://www.paris.cl/good.html"
		products := map[string]*pricewatch.Product{
			good: {Name: "Good", Prices: [3]string{"$1.000", "", ""}, CapturedAt: capturedAt},
		}
		history := &memoryHistory{}
		w := &watch.Watcher{
			URLs: trackedURLs(pricewatch.SourceURLs{
				Source: pricewatch.SourceParis,
				URLs:   []string{"https://www.paris.cl/missing.html", good},
			}),
			Extractors:  registryFor(pricewatch.SourceParis, stubExtractor(products)),
			Detector:    watch.NewChangeDetector(history.service(), nil),
			Concurrency: 1,
		}

		report, err := w.CheckAll(context.Background())

		require.NoError(t, err)
		require.Len(t, report.Results, 2)
		assert.Equal(t, pricewatch.StageFetching, report.Results[0].Stage)
		assert.Equal(t, pricewatch.EEXHAUSTED, pricewatch.ErrorCode(report.Results[0].Err))
		assert.True(t, report.Results[1].Stored)
		assert.Equal(t, 1, history.len())
	})

	t.Run("nameless product fails at parsing and is not stored", func(t *testing.T) {
		t.Parallel()

		products := map[string]*pricewatch.Product{
			watchURL: {Prices: [3]string{"$100.000", "", ""}, CapturedAt: capturedAt},
		}
		history := &memoryHistory{}
		w := &watch.Watcher{
			URLs:       trackedURLs(pricewatch.SourceURLs{Source: pricewatch.SourceParis, URLs: []string{watchURL}}),
			Extractors: registryFor(pricewatch.SourceParis, stubExtractor(products)),
			Detector:   watch.NewChangeDetector(history.service(), nil),
		}

		report, err := w.CheckAll(context.Background())

		require.NoError(t, err)
		res := report.Results[0]
		assert.Equal(t, pricewatch.StageParsing, res.Stage)
		assert.Equal(t, pricewatch.EEMPTY, pricewatch.ErrorCode(res.Err))
		assert.Equal(t, 0, history.len())
		assert.Equal(t, "nothing to compare", report.Summary())
	})

	t.Run("skips sources without extractor", func(t *testing.T) {
		t.Parallel()

		w := &watch.Watcher{
			URLs: trackedURLs(pricewatch.SourceURLs{Source: pricewatch.SourceSPDigital, URLs: []string{"https://spdigital.cl/x"}}),
			Extractors: &mock.ExtractorRegistry{
				GetFn: func(pricewatch.Source) pricewatch.Extractor { return nil },
			},
			Detector: watch.NewChangeDetector(&mock.HistoryService{}, nil),
		}

		report, err := w.CheckAll(context.Background())

		require.NoError(t, err)
		assert.Empty(t, report.Results)
		assert.Equal(t, "nothing to compare", report.Summary())
	})

	t.Run("notifier failure keeps the history write", func(t *testing.T) {
		t.Parallel()

		products := map[string]*pricewatch.Product{
			watchURL: {Name: "Watch", Prices: [3]string{"$95.000", "", ""}, CapturedAt: capturedAt},
		}
		history := &memoryHistory{entries: []*pricewatch.HistoryEntry{{URL: watchURL, Prices: [3]*int64{ptr(100000), nil, nil}}}}
		notes := &recordingNotifier{err: errors.New("webhook returned 500")}
		w := &watch.Watcher{
			URLs:       trackedURLs(pricewatch.SourceURLs{Source: pricewatch.SourceParis, URLs: []string{watchURL}}),
			Extractors: registryFor(pricewatch.SourceParis, stubExtractor(products)),
			Detector:   watch.NewChangeDetector(history.service(), nil),
			Notifier:   notes.notifier(),
		}

		report, err := w.CheckAll(context.Background())

		require.NoError(t, err)
		res := report.Results[0]
		assert.True(t, res.Stored)
		assert.False(t, res.Notified)
		assert.Equal(t, pricewatch.StageNotifying, res.Stage)
		require.Error(t, res.Err)
		assert.Equal(t, 2, history.len())
	})

	t.Run("store failure suppresses notification by default", func(t *testing.T) {
		t.Parallel()

		products := map[string]*pricewatch.Product{
			watchURL: {Name: "Watch", Prices: [3]string{"$95.000", "", ""}, CapturedAt: capturedAt},
		}
		history := &memoryHistory{
			entries:   []*pricewatch.HistoryEntry{{URL: watchURL, Prices: [3]*int64{ptr(100000), nil, nil}}},
			createErr: errors.New("disk full"),
		}
		notes := &recordingNotifier{}
		w := &watch.Watcher{
			URLs:       trackedURLs(pricewatch.SourceURLs{Source: pricewatch.SourceParis, URLs: []string{watchURL}}),
			Extractors: registryFor(pricewatch.SourceParis, stubExtractor(products)),
			Detector:   watch.NewChangeDetector(history.service(), nil),
			Notifier:   notes.notifier(),
		}

		report, err := w.CheckAll(context.Background())

		require.NoError(t, err)
		res := report.Results[0]
		assert.Equal(t, pricewatch.StageStoring, res.Stage)
		assert.False(t, res.Stored)
		assert.Empty(t, notes.msgs)
	})

	t.Run("store failure still notifies when configured", func(t *testing.T) {
		t.Parallel()

		products := map[string]*pricewatch.Product{
			watchURL: {Name: "Watch", Prices: [3]string{"$95.000", "", ""}, CapturedAt: capturedAt},
		}
		history := &memoryHistory{
			entries:   []*pricewatch.HistoryEntry{{URL: watchURL, Prices: [3]*int64{ptr(100000), nil, nil}}},
			createErr: errors.New("disk full"),
		}
		notes := &recordingNotifier{}
		w := &watch.Watcher{
			URLs:                 trackedURLs(pricewatch.SourceURLs{Source: pricewatch.SourceParis, URLs: []string{watchURL}}),
			Extractors:           registryFor(pricewatch.SourceParis, stubExtractor(products)),
			Detector:             watch.NewChangeDetector(history.service(), nil),
			Notifier:             notes.notifier(),
			NotifyOnStoreFailure: true,
		}

		report, err := w.CheckAll(context.Background())

		require.NoError(t, err)
		res := report.Results[0]
		assert.False(t, res.Stored)
		assert.True(t, res.Notified)
		assert.Len(t, notes.msgs, 1)
	})

	t.Run("returns error when tracked URLs cannot be loaded", func(t *testing.T) {
		t.Parallel()

		w := &watch.Watcher{
			URLs: &mock.TrackedURLService{
				FindAllURLsFn: func(_ context.Context) ([]pricewatch.SourceURLs, error) {
					return nil, errors.New("no such table")
				},
			},
		}

		_, err := w.CheckAll(context.Background())
		require.Error(t, err)
	})

	t.Run("refuses to start while another check is running", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		w := &watch.Watcher{
			URLs: &mock.TrackedURLService{
				FindAllURLsFn: func(_ context.Context) ([]pricewatch.SourceURLs, error) {
					close(started)
					<-release
					return nil, nil
				},
			},
		}

		done := make(chan error, 1)
		go func() {
			_, err := w.CheckAll(context.Background())
			done <- err
		}()
		<-started

		_, err := w.CheckAll(context.Background())
		require.Error(t, err)
		assert.Equal(t, pricewatch.ECONFLICT, pricewatch.ErrorCode(err))

		close(release)
		require.NoError(t, <-done)

		report, err := w.CheckAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, report.Results)
	})
}
