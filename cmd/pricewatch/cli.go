package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pricewatch"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	URLs     pricewatch.TrackedURLService
	History  pricewatch.HistoryService
	Checker  pricewatch.PriceChecker
	Notifier pricewatch.Notifier
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB          string `name:"db" env:"PRICEWATCH_DB" help:"SQLite database path"`
	PostgresDSN string `name:"postgres-dsn" env:"PRICEWATCH_POSTGRES_DSN" help:"Use PostgreSQL instead of SQLite"`
	WebhookURL  string `name:"webhook-url" env:"DISCORD_WEBHOOK_URL" help:"Discord webhook for notifications"`
	LogLevel    string `name:"log-level" env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat   string `name:"log-format" env:"LOG_FORMAT" default:"text" enum:"text,json" help:"Log format"`

	Browser              bool          `env:"PRICEWATCH_BROWSER" help:"Fetch pages with headless Chrome"`
	Cookies              string        `env:"PRICEWATCH_COOKIES" type:"path" help:"JSON file of cookies to send with plain HTTP fetches"`
	FetchTimeout         time.Duration `name:"fetch-timeout" default:"30s" help:"Per-page fetch timeout"`
	FetchDelay           time.Duration `name:"fetch-delay" default:"1s" help:"Minimum courtesy delay before each fetch; the actual delay is up to three times this"`
	Concurrency          int           `short:"c" default:"4" help:"Concurrent URL checks"`
	MaxAttempts          int           `name:"max-attempts" default:"2" help:"Fetch attempts per URL"`
	HostRate             float64       `name:"host-rate" default:"1" help:"Requests per second per host (0 disables)"`
	NotifyOnStoreFailure bool          `name:"notify-on-store-failure" help:"Send change notifications even when the history write fails"`

	Watch   WatchCmd   `cmd:"" help:"Check all tracked URLs on an interval"`
	Compare CompareCmd `cmd:"" help:"Check all tracked URLs once and print a summary"`
	Add     AddCmd     `cmd:"" help:"Track a product URL"`
	List    ListCmd    `cmd:"" help:"List tracked URLs"`
	Update  UpdateCmd  `cmd:"" help:"Replace a tracked URL"`
	Delete  DeleteCmd  `cmd:"" help:"Stop tracking a URL"`
	History HistoryCmd `cmd:"" help:"Show the price history of a URL"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	Interval       time.Duration `short:"i" default:"2h" help:"Time between checks"`
	NoRunOnStart   bool          `name:"no-run-on-start" help:"Wait one interval before the first check"`
	Listen         string        `help:"Serve the HTTP API on this address (e.g. :8080)"`
	AllowedOrigins []string      `name:"allowed-origin" help:"CORS origin allowed to call the API (repeatable)"`
}

// CompareCmd is the "compare" subcommand.
type CompareCmd struct {
	Notify bool `help:"Also send each summary to the notifier"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	URL    string `arg:"" help:"Product URL"`
	Source string `short:"s" help:"Source (paris, falabella, spdigital); inferred from the URL by default"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Source string `short:"s" help:"Only list URLs of this source"`
}

// UpdateCmd is the "update" subcommand.
type UpdateCmd struct {
	OldURL string `arg:"" name:"old-url" help:"Tracked URL to replace"`
	NewURL string `arg:"" name:"new-url" help:"Replacement URL"`
	Source string `short:"s" help:"Source; inferred from the old URL by default"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	URL    string `arg:"" help:"Tracked URL"`
	Source string `short:"s" help:"Source; inferred from the URL by default"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL   string `arg:"" help:"Tracked URL"`
	Limit int    `short:"n" default:"10" help:"Maximum entries to show"`
}

// resolveSource returns the named source, or the one inferred from url.
func resolveSource(name, url string) (pricewatch.Source, error) {
	if name != "" {
		return pricewatch.ParseSource(name)
	}
	return pricewatch.SourceFromURL(url)
}
