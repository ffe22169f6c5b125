package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var groups []pricewatch.SourceURLs
	if c.Source != "" {
		source, err := pricewatch.ParseSource(c.Source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
			return err
		}
		urls, err := deps.URLs.FindURLsBySource(deps.Ctx, source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
			return err
		}
		if len(urls) > 0 {
			groups = append(groups, pricewatch.SourceURLs{Source: source, URLs: urls})
		}
	} else {
		var err error
		if groups, err = deps.URLs.FindAllURLs(deps.Ctx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
			return err
		}
	}

	if len(groups) == 0 {
		fmt.Fprintln(deps.Stdout, "No URLs tracked. Use 'pricewatch add' to track one.")
		return nil
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "%s\n", g.Source.Title())
		for _, u := range g.URLs {
			fmt.Fprintf(deps.Stdout, "  %s\n", u)
		}
	}
	return nil
}
