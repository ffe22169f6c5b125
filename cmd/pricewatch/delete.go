package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
)

// Run executes the delete command. History of the URL is kept.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	source, err := resolveSource(c.Source, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if err := deps.URLs.DeleteURL(deps.Ctx, source, c.URL); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s URL: %s\n", source.Title(), c.URL)
	return nil
}
