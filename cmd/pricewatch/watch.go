package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
	pwhttp "github.com/fwojciec/pricewatch/http"
	"github.com/fwojciec/pricewatch/watch"
	"golang.org/x/sync/errgroup"
)

// Run executes the watch command. It blocks until the context is canceled.
func (c *WatchCmd) Run(deps *Dependencies) error {
	opts := []watch.SchedulerOption{
		watch.WithInterval(c.Interval),
		watch.WithSchedulerLogger(deps.logger()),
		watch.WithReportHandler(func(report *pricewatch.CheckReport) {
			fmt.Fprintln(deps.Stdout, report.Summary())
		}),
	}
	if !c.NoRunOnStart {
		opts = append(opts, watch.WithRunOnStart())
	}
	scheduler := watch.NewScheduler(deps.Checker, opts...)

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		return scheduler.Run(ctx)
	})
	if c.Listen != "" {
		srv := pwhttp.NewServer()
		srv.URLs = deps.URLs
		srv.History = deps.History
		srv.Checker = deps.Checker
		srv.Logger = deps.logger()
		srv.AllowedOrigins = c.AllowedOrigins
		g.Go(func() error {
			return srv.ListenAndServe(ctx, c.Listen)
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	return nil
}
