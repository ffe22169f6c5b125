package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	source, err := resolveSource(c.Source, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	added, err := deps.URLs.AddURL(deps.Ctx, source, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if !added {
		fmt.Fprintf(deps.Stdout, "Already tracked: %s (%s)\n", c.URL, source.Title())
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Added %s URL: %s\n", source.Title(), c.URL)
	return nil
}
