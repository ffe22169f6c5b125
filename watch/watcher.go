package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fwojciec/pricewatch"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs checked at once.
const DefaultConcurrency = 4

var _ pricewatch.PriceChecker = (*Watcher)(nil)

// Watcher runs one check over every tracked URL: fetch, parse, decide,
// store and notify. Failures are contained per URL and reported on the
// result, so one bad page never stops the batch.
type Watcher struct {
	URLs       pricewatch.TrackedURLService
	Extractors pricewatch.ExtractorRegistry
	Detector   *ChangeDetector
	Notifier   pricewatch.Notifier
	Logger     *slog.Logger

	// Concurrency bounds the number of URLs in flight.
	Concurrency int

	// NotifyOnStoreFailure sends change notifications even when the history
	// write failed. By default a change is only announced once it is stored.
	NotifyOnStoreFailure bool

	running sync.Mutex
}

type checkTask struct {
	source    pricewatch.Source
	url       string
	extractor pricewatch.Extractor
	labels    pricewatch.LabelMapping
}

// CheckAll checks every tracked URL. The returned error is only set when the
// tracked URLs could not be loaded, or with ECONFLICT when another check is
// still running on this Watcher.
func (w *Watcher) CheckAll(ctx context.Context) (*pricewatch.CheckReport, error) {
	if !w.running.TryLock() {
		return nil, pricewatch.Errorf(pricewatch.ECONFLICT, "a price check is already running")
	}
	defer w.running.Unlock()

	groups, err := w.URLs.FindAllURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tracked URLs: %w", err)
	}

	tasks := w.plan(groups)

	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*pricewatch.CheckResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = w.check(gctx, task)
			return nil
		})
	}
	_ = g.Wait()

	report := &pricewatch.CheckReport{Results: results}
	checked, stored, changed, failed := report.Counts()
	w.logger().Info("check finished",
		"checked", checked,
		"changed", changed,
		"stored", stored,
		"failed", failed,
	)
	return report, nil
}

// plan resolves the extractor and labels of every tracked URL, skipping
// sources that cannot be processed.
func (w *Watcher) plan(groups []pricewatch.SourceURLs) []checkTask {
	var tasks []checkTask
	for _, group := range groups {
		extractor := w.Extractors.Get(group.Source)
		if extractor == nil {
			w.logger().Warn("no extractor for source", "source", group.Source, "urls", len(group.URLs))
			continue
		}
		labels, err := pricewatch.Labels(group.Source)
		if err != nil {
			w.logger().Warn("no labels for source", "source", group.Source, "err", err)
			continue
		}
		for _, url := range group.URLs {
			tasks = append(tasks, checkTask{
				source:    group.Source,
				url:       url,
				extractor: extractor,
				labels:    labels,
			})
		}
	}
	return tasks
}

// check runs the pipeline for one URL.
func (w *Watcher) check(ctx context.Context, task checkTask) *pricewatch.CheckResult {
	res := &pricewatch.CheckResult{
		Source: task.source,
		URL:    task.url,
		Labels: task.labels,
		Stage:  pricewatch.StageFetching,
	}

	html, err := task.extractor.Fetch(ctx, task.url)
	if err != nil {
		return w.fail(res, err)
	}

	res.Stage = pricewatch.StageParsing
	product := task.extractor.Parse(html)
	res.Product = product
	if !product.Found() {
		return w.fail(res, pricewatch.Errorf(pricewatch.EEMPTY, "no product name extracted from %s", task.url))
	}

	res.Stage = pricewatch.StageDeciding
	outcome, err := w.Detector.Decide(ctx, task.source, task.url, product, task.labels)
	if err != nil {
		return w.fail(res, err)
	}
	res.Decision = outcome.Decision
	res.Deltas = outcome.Deltas

	w.logger().Debug("decided",
		"url", task.url,
		"decision", outcome.Decision.String(),
		"captured_at", formatTime(product.CapturedAt),
	)

	if !outcome.Decision.Stores() {
		res.Stage = pricewatch.StageDone
		return res
	}

	res.Stage = pricewatch.StageStoring
	outcome.Entry.PageHash = computeHash(html)
	if err := w.Detector.Store(ctx, outcome); err != nil {
		w.fail(res, err)
		if outcome.Decision != pricewatch.DecisionChange || !w.NotifyOnStoreFailure {
			return res
		}
	} else {
		res.Stored = true
	}

	if outcome.Decision == pricewatch.DecisionChange && w.Notifier != nil {
		if res.Err == nil {
			res.Stage = pricewatch.StageNotifying
		}
		msg := ChangeMessage(task.source, task.url, product, outcome.Deltas)
		if err := w.Notifier.Notify(ctx, msg); err != nil {
			if res.Err == nil {
				w.fail(res, err)
			} else {
				w.logger().Error("notify failed", "url", task.url, "err", err)
			}
			return res
		}
		res.Notified = true
	}

	if res.Err == nil {
		res.Stage = pricewatch.StageDone
	}
	return res
}

// fail records err on res and logs it.
func (w *Watcher) fail(res *pricewatch.CheckResult, err error) *pricewatch.CheckResult {
	res.Err = err
	level := slog.LevelError
	if code := pricewatch.ErrorCode(err); code == pricewatch.EEXHAUSTED || code == pricewatch.EEMPTY {
		level = slog.LevelWarn
	}
	w.logger().Log(context.Background(), level, "check failed",
		"source", res.Source,
		"url", res.URL,
		"stage", res.Stage,
		"err", err,
	)
	return res
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}
