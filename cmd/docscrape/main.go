// Command docscrape saves the Hyperping API documentation for offline use.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/go-scripts/docscrape/internal/browser"
	"github.com/go-scripts/docscrape/internal/config"
	"github.com/go-scripts/docscrape/internal/progress"
	"github.com/go-scripts/docscrape/internal/scraper"
)

// CLIFlags are the command line overrides for the configuration file
type CLIFlags struct {
	ConfigFile     string `help:"Path to configuration file" name:"config" short:"c" type:"path"`
	OutputDir      string `help:"Directory the scraped files are written to" short:"o"`
	Engine         string `help:"Browser engine (chromedp, rod, static)" short:"e"`
	Headful        bool   `help:"Show the browser window"`
	BlockResources bool   `help:"Block images, stylesheets and fonts"`
	Debug          bool   `help:"Enable debug logging" default:"false"`
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("docscrape"),
		kong.Description("Scrape the Hyperping API documentation into JSON files."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// run loads the configuration, applies flags and performs one scrape.
// Failures are logged to stderr before they are returned.
func run(ctx context.Context, flags CLIFlags, stdout, stderr io.Writer) error {
	logger := log.NewWithOptions(stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "docscrape",
	})

	cfg, path, err := config.Resolve(flags.ConfigFile)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		return err
	}
	applyFlags(cfg, flags)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.LogLevel)
		level = log.InfoLevel
	}
	if flags.Debug {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	if path != "" {
		logger.Debug("configuration loaded", "path", path)
	}
	logger.Debug("starting run",
		"engine", cfg.Engine,
		"pages", len(cfg.Pages),
		"output_dir", cfg.OutputDir,
		"headless", cfg.Headless)

	tracker := progress.New(stdout, len(cfg.Pages), trackerOptions(stderr, flags.Debug))

	open := func(ctx context.Context) (browser.Session, error) {
		return browser.New(ctx, browser.OptionsFrom(cfg, logger))
	}

	_, err = scraper.New(cfg, open, tracker, logger).Run(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		logger.Warn("run interrupted")
	case errors.Is(err, scraper.ErrTrailingPage):
		// already reported by the tracker and the scraper
	default:
		logger.Error("scrape failed", "err", err)
	}
	return err
}

// applyFlags overrides cfg with the flags that were set
func applyFlags(cfg *config.Configuration, flags CLIFlags) {
	if flags.OutputDir != "" {
		cfg.OutputDir = flags.OutputDir
	}
	if flags.Engine != "" {
		cfg.Engine = flags.Engine
	}
	if flags.Headful {
		cfg.Headless = false
	}
	if flags.BlockResources {
		cfg.BlockResources = true
	}
	if flags.Debug {
		cfg.LogLevel = "debug"
	}
}

// trackerOptions turns on the spinner only for an interactive terminal
func trackerOptions(stderr io.Writer, debug bool) progress.Options {
	f, ok := stderr.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return progress.Options{}
	}
	return progress.Options{
		Status:  stderr,
		Spinner: !debug,
		Bar:     debug,
	}
}
