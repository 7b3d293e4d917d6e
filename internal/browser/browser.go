// Package browser drives the page a scrape run reads from. Every engine
// keeps one page open for the whole run and reuses it for each URL.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/docscrape/internal/config"
)

// evalTimeout bounds in-page script evaluation
const evalTimeout = 30 * time.Second

// Extraction is what a page yields for the selected content container
type Extraction struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
	Matched string `json:"matched"`
}

// Session is a single browser page reused across navigations
type Session interface {
	// Navigate loads url and returns once network activity has settled.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// WaitForContent blocks until an element matching any of selectors is present.
	WaitForContent(ctx context.Context, selectors []string, timeout time.Duration) error
	// Extract reads the first container matching selectors, in order, or the body.
	Extract(ctx context.Context, selectors []string) (Extraction, error)
	// BodyText returns the rendered text of the whole document.
	BodyText(ctx context.Context) (string, error)
	// Settle waits d for late rendering.
	Settle(ctx context.Context, d time.Duration) error
	// Close releases the browser. It is safe to call more than once.
	Close() error
}

// Options configure how the browser is launched
type Options struct {
	Engine         string
	Headless       bool
	NoSandbox      bool
	UserAgent      string
	BlockResources bool
	Logger         *log.Logger
}

// OptionsFrom copies the browser settings out of cfg
func OptionsFrom(cfg *config.Configuration, logger *log.Logger) Options {
	return Options{
		Engine:         cfg.Engine,
		Headless:       cfg.Headless,
		NoSandbox:      cfg.NoSandbox,
		UserAgent:      cfg.UserAgent,
		BlockResources: cfg.BlockResources,
		Logger:         logger,
	}
}

// New launches the engine named in opts
func New(ctx context.Context, opts Options) (Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	switch opts.Engine {
	case config.EngineChromedp, "":
		return NewChromedp(ctx, opts)
	case config.EngineRod:
		return NewRod(ctx, opts)
	case config.EngineStatic:
		return NewStatic(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownEngine, opts.Engine)
	}
}

// withTimeout derives a context from base that also ends when parent does.
// base carries the engine's page; parent carries the caller's cancellation.
func withTimeout(base, parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(base, d)
	stop := context.AfterFunc(parent, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// sleep waits d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
