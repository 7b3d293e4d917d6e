// Package progress prints what a scrape run is doing: one line per page on
// the output writer, plus a spinner and a progress bar on the status writer
// when it is a terminal.
package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const ruleWidth = 60

// Options control the optional decorations
type Options struct {
	// Status receives the spinner and the progress bar. Nil disables both.
	Status io.Writer
	// Spinner shows an animated spinner while a page is in flight.
	Spinner bool
	// Bar prints a progress bar after every page of the fixed list.
	Bar bool
}

// Tracker reports scrape progress
type Tracker struct {
	out     io.Writer
	status  io.Writer
	spinner *spinner.Spinner
	bar     *progress.Model

	okStyle    lipgloss.Style
	errStyle   lipgloss.Style
	titleStyle lipgloss.Style

	mu        sync.Mutex
	total     int
	processed int
}

// New creates a Tracker for a run over total pages
func New(out io.Writer, total int, opts Options) *Tracker {
	renderer := lipgloss.NewRenderer(out)

	t := &Tracker{
		out:        out,
		status:     opts.Status,
		total:      total,
		okStyle:    renderer.NewStyle().Foreground(lipgloss.Color("86")),
		errStyle:   renderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		titleStyle: renderer.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
	}

	if opts.Status != nil && opts.Spinner {
		t.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(opts.Status))
	}
	if opts.Status != nil && opts.Bar {
		bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
		t.bar = &bar
	}

	return t
}

// StartPage announces a page of the fixed list
func (t *Tracker) StartPage(url string) {
	t.println("Scraping: %s", url)
	t.spin(url)
}

// PageSaved reports a written page file
func (t *Tracker) PageSaved(path string) {
	t.stopSpin()
	t.println("%s", t.okStyle.Render("✅ Saved to "+path))
	t.advance()
}

// PageFailed reports a page that was skipped
func (t *Tracker) PageFailed(url string, err error) {
	t.stopSpin()
	t.println("%s", t.errStyle.Render(fmt.Sprintf("❌ Error scraping %s: %v", url, err)))
	t.advance()
}

// StartTrailing announces the trailing page under label
func (t *Tracker) StartTrailing(label, url string) {
	t.println("\nScraping %s page...", label)
	t.spin(url)
}

// TrailingSaved reports the written trailing page
func (t *Tracker) TrailingSaved(label, path string) {
	t.stopSpin()
	t.println("%s", t.okStyle.Render(fmt.Sprintf("✅ Saved %s docs to %s", label, path)))
}

// TrailingFailed reports a trailing page failure
func (t *Tracker) TrailingFailed(url string, err error) {
	t.stopSpin()
	t.println("%s", t.errStyle.Render(fmt.Sprintf("❌ Error scraping %s: %v", url, err)))
}

// Summary prints the end of run banner
func (t *Tracker) Summary(scraped int, outputDir string) {
	t.stopSpin()
	rule := strings.Repeat("=", ruleWidth)
	t.println("\n%s", rule)
	t.println("%s", t.titleStyle.Render(fmt.Sprintf("Scraped %d pages successfully", scraped)))
	t.println("Output directory: %s", displayDir(outputDir))
	t.println("%s", rule)
}

// Processed returns how many pages of the fixed list have been handled
func (t *Tracker) Processed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed
}

func (t *Tracker) println(format string, args ...any) {
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Tracker) spin(url string) {
	if t.spinner == nil {
		return
	}
	t.spinner.Suffix = " " + formatSpinnerMessage(url)
	t.spinner.Start()
}

func (t *Tracker) stopSpin() {
	if t.spinner == nil {
		return
	}
	t.spinner.Stop()
}

func (t *Tracker) advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed++

	if t.bar != nil && t.total > 0 {
		fmt.Fprintf(t.status, "Progress: %s %d/%d pages\n",
			t.bar.ViewAs(float64(t.processed)/float64(t.total)),
			t.processed,
			t.total)
	}
}

// displayDir renders dir the way the summary shows it: ./docs_scraped/
func displayDir(dir string) string {
	dir = filepath.ToSlash(filepath.Clean(dir))
	if !filepath.IsAbs(dir) && !strings.HasPrefix(dir, ".") {
		dir = "./" + dir
	}
	return strings.TrimSuffix(dir, "/") + "/"
}

// formatSpinnerMessage truncates long URLs for the spinner suffix
func formatSpinnerMessage(urlStr string) string {
	const maxLen = 60
	if len(urlStr) <= maxLen {
		return urlStr
	}
	return "..." + urlStr[len(urlStr)-(maxLen-3):]
}
