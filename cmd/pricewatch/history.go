package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/watch"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	url := c.URL
	entries, err := deps.History.FindEntries(deps.Ctx, pricewatch.HistoryFilter{
		URL:   &url,
		Limit: c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No history for %s\n", c.URL)
		return nil
	}

	for _, e := range entries {
		labels, err := pricewatch.Labels(e.Source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "%s  %s\n", e.CapturedAt.Local().Format(watch.FooterTimeFormat), e.ProductName)
		for _, slot := range pricewatch.Slots() {
			fmt.Fprintf(deps.Stdout, "  %-20s %s\n", labels.Label(slot)+":", watch.FormatEntryPrice(e.Price(slot)))
		}
	}
	return nil
}
