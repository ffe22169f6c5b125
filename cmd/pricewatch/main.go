package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/discord"
	"github.com/fwojciec/pricewatch/goquery"
	pwhttp "github.com/fwojciec/pricewatch/http"
	"github.com/fwojciec/pricewatch/postgres"
	"github.com/fwojciec/pricewatch/rod"
	pwslog "github.com/fwojciec/pricewatch/slog"
	"github.com/fwojciec/pricewatch/sqlite"
	"github.com/fwojciec/pricewatch/watch"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment is used as is.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Default SQLite path, used when neither --db nor a DSN is given.
	DBPath string

	// Services for end-to-end testing. When set, no database is opened.
	TrackedURLService pricewatch.TrackedURLService
	HistoryService    pricewatch.HistoryService

	// Fetcher replaces the HTTP or browser fetcher when set. It is not
	// closed by Close.
	Fetcher pricewatch.Fetcher

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pricewatch"),
		kong.Description("Watch product prices on Paris, Falabella and SP Digital."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pricewatch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	deps.Logger, err = pwslog.NewLogger(stderr, cli.LogLevel, cli.LogFormat)
	if err != nil {
		return err
	}

	if err := m.openStorage(ctx, cli, deps, stderr); err != nil {
		return err
	}

	switch kongCtx.Command() {
	case "watch", "compare":
		if err := m.wireChecker(cli, deps, stderr); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// openStorage wires the tracked-URL and history services.
func (m *Main) openStorage(ctx context.Context, cli *CLI, deps *Dependencies, stderr io.Writer) error {
	urls, history := m.TrackedURLService, m.HistoryService

	switch {
	case urls != nil && history != nil:
	case cli.PostgresDSN != "":
		db := postgres.NewDB(cli.PostgresDSN)
		if err := db.Open(ctx); err != nil {
			fmt.Fprintln(stderr, "Hint: check PRICEWATCH_POSTGRES_DSN")
			return fmt.Errorf("failed to open postgres: %w", err)
		}
		m.closers = append(m.closers, db.Close)
		urls, history = postgres.NewTrackedURLService(db), postgres.NewHistoryService(db)
	default:
		path := cli.DB
		if path == "" {
			path = m.DBPath
		}
		db := sqlite.NewDB(path)
		if err := db.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set PRICEWATCH_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		m.closers = append(m.closers, db.Close)
		urls, history = sqlite.NewTrackedURLService(db), sqlite.NewHistoryService(db)
	}

	deps.URLs = urls
	deps.History = pwslog.NewLoggingHistoryService(history, deps.Logger)
	return nil
}

// wireChecker builds the fetch, parse, decide, store and notify pipeline.
func (m *Main) wireChecker(cli *CLI, deps *Dependencies, stderr io.Writer) error {
	fetcher, err := m.newFetcher(cli, stderr)
	if err != nil {
		return err
	}
	if m.Fetcher == nil {
		m.closers = append(m.closers, fetcher.Close)
	}

	retrier := watch.NewRetryFetcher(
		pwslog.NewLoggingFetcher(fetcher, deps.Logger),
		watch.WithMaxAttempts(cli.MaxAttempts),
		watch.WithPreDelay(watch.Backoff{Min: cli.FetchDelay, Max: 3 * cli.FetchDelay}),
		watch.WithChallengeDetector(goquery.NewChallengeDetector()),
		watch.WithHostLimiter(watch.NewHostLimiter(cli.HostRate)),
		watch.WithRetryLogger(deps.Logger),
	)

	var notifier pricewatch.Notifier
	if cli.WebhookURL != "" {
		notifier = discord.NewNotifier(cli.WebhookURL)
	}
	deps.Notifier = pwslog.NewLoggingNotifier(notifier, deps.Logger)

	deps.Checker = &watch.Watcher{
		URLs:                 deps.URLs,
		Extractors:           pwslog.NewLoggingRegistry(goquery.NewSourceRegistry(retrier), deps.Logger),
		Detector:             watch.NewChangeDetector(deps.History, deps.Logger),
		Notifier:             deps.Notifier,
		Logger:               deps.Logger,
		Concurrency:          cli.Concurrency,
		NotifyOnStoreFailure: cli.NotifyOnStoreFailure,
	}
	return nil
}

func (m *Main) newFetcher(cli *CLI, stderr io.Writer) (pricewatch.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}

	if cli.Browser {
		fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(cli.FetchTimeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		return fetcher, nil
	}

	opts := []pwhttp.Option{pwhttp.WithTimeout(cli.FetchTimeout)}
	if cli.Cookies != "" {
		cookies, err := pwhttp.LoadCookies(cli.Cookies)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pwhttp.WithCookies(cookies))
	}
	return pwhttp.NewFetcher(opts...), nil
}

func defaultDBPath() string {
	if path := os.Getenv("PRICEWATCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pricewatch.db"
	}
	dir := filepath.Join(home, ".pricewatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pricewatch.db")
}
