// Package scraper runs a documentation capture: every page of the fixed
// list is scraped into its own JSON file, then the trailing page's body
// text is saved as plain text.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/docscrape/internal/browser"
	"github.com/go-scripts/docscrape/internal/config"
	"github.com/go-scripts/docscrape/internal/progress"
	"github.com/go-scripts/docscrape/internal/types"
	"github.com/go-scripts/docscrape/internal/writer"
)

// ErrTrailingPage marks a run whose trailing page could not be saved
var ErrTrailingPage = errors.New("trailing page failed")

// SessionFactory opens the browser session a run reads pages from
type SessionFactory func(ctx context.Context) (browser.Session, error)

// Summary describes a finished run
type Summary struct {
	Attempted     int
	Succeeded     int
	Failed        int
	Recorded      int
	TrailingSaved bool
	Duration      time.Duration
}

// DocScraper drives one browser session across the configured pages
type DocScraper struct {
	cfg     *config.Configuration
	open    SessionFactory
	tracker *progress.Tracker
	logger  *log.Logger
}

// New creates a DocScraper
func New(cfg *config.Configuration, open SessionFactory, tracker *progress.Tracker, logger *log.Logger) *DocScraper {
	if logger == nil {
		logger = log.Default()
	}
	return &DocScraper{
		cfg:     cfg,
		open:    open,
		tracker: tracker,
		logger:  logger,
	}
}

// Run scrapes the fixed list and then the trailing page.
//
// A failing page of the fixed list is reported and skipped. A failing
// trailing page is reported the same way, but Run then returns an error
// wrapping ErrTrailingPage. The browser session is closed before Run
// returns, whatever happened.
func (d *DocScraper) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	var summary Summary

	tasks, err := buildTasks(d.cfg.Pages)
	if err != nil {
		return summary, err
	}

	w, err := writer.New(d.cfg.OutputDir)
	if err != nil {
		return summary, err
	}

	session, err := d.open(ctx)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			d.logger.Warn("browser cleanup failed", "err", err)
		}
	}()

	results := types.ResultsIndex{}

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}

		summary.Attempted++
		d.tracker.StartPage(task.URL)

		content, path, err := d.scrapePage(ctx, session, w, task)
		if err != nil {
			summary.Failed++
			d.tracker.PageFailed(task.URL, err)
			d.logger.Error("page scrape failed", "url", task.URL, "err", err)
			continue
		}

		summary.Succeeded++
		d.tracker.PageSaved(path)
		results.Record(task.Name(), content.Text)
	}

	var runErr error
	if ctx.Err() != nil {
		runErr = ctx.Err()
	} else {
		d.tracker.StartTrailing(d.cfg.Trailing.Label(), d.cfg.Trailing.URL)
		path, err := d.scrapeTrailing(ctx, session, w)
		if err != nil {
			d.tracker.TrailingFailed(d.cfg.Trailing.URL, err)
			d.logger.Error("trailing page scrape failed", "url", d.cfg.Trailing.URL, "err", err)
			runErr = fmt.Errorf("%w: %s: %w", ErrTrailingPage, d.cfg.Trailing.URL, err)
		} else {
			summary.TrailingSaved = true
			d.tracker.TrailingSaved(d.cfg.Trailing.Label(), path)
		}
	}

	summary.Recorded = results.Count()
	summary.Duration = time.Since(start)
	d.tracker.Summary(summary.Recorded, w.Dir())

	d.logger.Debug("run finished",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"trailing_saved", summary.TrailingSaved,
		"duration", summary.Duration.Round(time.Millisecond))

	return summary, runErr
}

// scrapePage loads one page of the fixed list and writes its JSON file.
// Nothing is written unless extraction succeeded.
func (d *DocScraper) scrapePage(ctx context.Context, session browser.Session, w *writer.FileWriter, task types.PageTask) (types.ScrapedContent, string, error) {
	if err := session.Navigate(ctx, task.URL, d.cfg.NavigationTimeout); err != nil {
		return types.ScrapedContent{}, "", err
	}

	if err := session.WaitForContent(ctx, d.cfg.Selectors, d.cfg.SelectorTimeout); err != nil {
		return types.ScrapedContent{}, "", err
	}

	extraction, err := session.Extract(ctx, d.cfg.Selectors)
	if err != nil {
		return types.ScrapedContent{}, "", err
	}
	d.logger.Debug("content extracted", "url", task.URL, "selector", extraction.Matched, "chars", len(extraction.Text))

	content := types.ScrapedContent{
		URL:   task.URL,
		Title: extraction.Title,
		Text:  extraction.Text,
		HTML:  extraction.HTML,
	}

	path, err := w.WriteJSON(task.FileName, content)
	if err != nil {
		return types.ScrapedContent{}, "", err
	}

	return content, path, nil
}

// scrapeTrailing saves the body text of the trailing page. It waits a fixed
// delay instead of a selector since the page has no stable container.
func (d *DocScraper) scrapeTrailing(ctx context.Context, session browser.Session, w *writer.FileWriter) (string, error) {
	if err := session.Navigate(ctx, d.cfg.Trailing.URL, d.cfg.NavigationTimeout); err != nil {
		return "", err
	}

	if err := session.Settle(ctx, d.cfg.SettleDelay); err != nil {
		return "", err
	}

	text, err := session.BodyText(ctx)
	if err != nil {
		return "", err
	}

	return w.WriteText(d.cfg.Trailing.File, text)
}

func buildTasks(pages []string) ([]types.PageTask, error) {
	tasks := make([]types.PageTask, 0, len(pages))
	for _, p := range pages {
		task, err := types.NewPageTask(p)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
