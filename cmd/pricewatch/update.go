package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
)

// Run executes the update command.
func (c *UpdateCmd) Run(deps *Dependencies) error {
	source, err := resolveSource(c.Source, c.OldURL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if err := deps.URLs.UpdateURL(deps.Ctx, source, c.OldURL, c.NewURL); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Updated %s URL: %s -> %s\n", source.Title(), c.OldURL, c.NewURL)
	return nil
}
