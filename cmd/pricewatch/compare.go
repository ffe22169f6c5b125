package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/watch"
)

// Run executes the compare command.
func (c *CompareCmd) Run(deps *Dependencies) error {
	report, err := deps.Checker.CheckAll(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(report.Results) == 0 {
		fmt.Fprintln(deps.Stdout, "No URLs to compare. Use 'pricewatch add' to track one.")
		return nil
	}

	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(deps.Stdout, "FAILED %s (%s): %s\n\n", res.URL, res.Stage, pricewatch.ErrorMessage(res.Err))
			continue
		}
		msg := watch.SummaryMessage(res)
		if msg == nil {
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s\n%s\n%s\n\n", msg.Title, msg.URL, msg.Body)

		if c.Notify && deps.Notifier != nil {
			// Delivery failures are logged by the notifier and don't fail the command.
			_ = deps.Notifier.Notify(deps.Ctx, msg)
		}
	}

	fmt.Fprintln(deps.Stdout, report.Summary())
	return nil
}
