package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/robfig/cron/v3"
)

// DefaultInterval is the time between two checks.
const DefaultInterval = 2 * time.Hour

// Scheduler runs a PriceChecker on a fixed interval. A run that is still in
// progress when the next one is due causes that next run to be skipped.
type Scheduler struct {
	checker    pricewatch.PriceChecker
	interval   time.Duration
	runOnStart bool
	onReport   func(*pricewatch.CheckReport)
	logger     *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the interval between runs. Defaults to 2h.
// Intervals are rounded down to whole seconds, with a minimum of one second.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// WithRunOnStart triggers a run as soon as the scheduler starts.
func WithRunOnStart() SchedulerOption {
	return func(s *Scheduler) {
		s.runOnStart = true
	}
}

// WithReportHandler receives every completed report.
func WithReportHandler(fn func(*pricewatch.CheckReport)) SchedulerOption {
	return func(s *Scheduler) {
		s.onReport = fn
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler for checker.
func NewScheduler(checker pricewatch.PriceChecker, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		checker:  checker,
		interval: DefaultInterval,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run schedules checks until ctx is canceled, then waits for a running
// check to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{logger: s.logger}
	c := cron.New(cron.WithLogger(logger))

	job := cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
		s.runOnce(ctx)
	}))
	c.Schedule(cron.Every(s.interval), job)

	s.logger.Info("scheduler started", "interval", s.interval)
	c.Start()
	var wg sync.WaitGroup
	if s.runOnStart {
		wg.Go(job.Run)
	}

	<-ctx.Done()
	<-c.Stop().Done()
	wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := s.checker.CheckAll(ctx)
	if pricewatch.ErrorCode(err) == pricewatch.ECONFLICT {
		s.logger.Info("check run skipped", "reason", pricewatch.ErrorMessage(err))
		return
	}
	if err != nil {
		s.logger.Error("check run failed", "err", err)
		return
	}
	s.logger.Info("check run finished", "summary", report.Summary())
	if s.onReport != nil {
		s.onReport(report)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}
