package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeSession runs every navigation in one chromedp tab
type ChromeSession struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	logger      *log.Logger
	closeOnce   sync.Once
	closeErr    error
}

// NewChromedp starts Chrome and opens the tab shared by the whole run
func NewChromedp(ctx context.Context, opts Options) (*ChromeSession, error) {
	// Setup browser options
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(opts.Logger.Debugf),
		chromedp.WithErrorf(opts.Logger.Debugf),
	)

	s := &ChromeSession{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		logger:      opts.Logger,
	}

	// An empty run launches the browser and attaches to the tab
	setup := []chromedp.Action{page.SetLifecycleEventsEnabled(true)}
	if opts.BlockResources {
		setup = append(setup, network.Enable(), network.SetBlockedURLs(blockedResourcePatterns))
	}
	if err := chromedp.Run(tabCtx, setup...); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	opts.Logger.Debug("browser started", "engine", "chromedp", "headless", opts.Headless, "block_resources", opts.BlockResources)
	return s, nil
}

// Navigate loads url and waits for the main frame to report network idle
func (s *ChromeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := withTimeout(s.tabCtx, ctx, timeout)
	defer cancel()

	idle := listenNetworkIdle(navCtx)

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return classify(ctx, navCtx, err, ErrNavigationTimeout, ErrNavigation, url)
	}

	select {
	case <-idle:
		return nil
	case <-navCtx.Done():
		return classify(ctx, navCtx, navCtx.Err(), ErrNavigationTimeout, ErrNavigation, url)
	}
}

// listenNetworkIdle closes the returned channel on the first networkIdle
// lifecycle event of the frame that committed first after the call. The
// listener goes away with ctx.
func listenNetworkIdle(ctx context.Context) <-chan struct{} {
	idle := make(chan struct{})

	var (
		mu    sync.Mutex
		once  sync.Once
		watch idleWatch
	)

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		if watch.observe(string(e.FrameID), string(e.Name)) {
			once.Do(func() { close(idle) })
		}
	})

	return idle
}

// WaitForContent waits for any of selectors to become visible
func (s *ChromeSession) WaitForContent(ctx context.Context, selectors []string, timeout time.Duration) error {
	waitCtx, cancel := withTimeout(s.tabCtx, ctx, timeout)
	defer cancel()

	query := joinSelectors(selectors)
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(query, chromedp.ByQuery)); err != nil {
		return classify(ctx, waitCtx, err, ErrSelectorTimeout, ErrSelectorTimeout, query)
	}
	return nil
}

// Extract evaluates the selector chain inside the page
func (s *ChromeSession) Extract(ctx context.Context, selectors []string) (Extraction, error) {
	evalCtx, cancel := withTimeout(s.tabCtx, ctx, evalTimeout)
	defer cancel()

	var out Extraction
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(extractScript(selectors), &out)); err != nil {
		return Extraction{}, classify(ctx, evalCtx, err, ErrEvaluation, ErrEvaluation, "extract content")
	}
	return out, nil
}

// BodyText returns document.body.innerText
func (s *ChromeSession) BodyText(ctx context.Context) (string, error) {
	evalCtx, cancel := withTimeout(s.tabCtx, ctx, evalTimeout)
	defer cancel()

	var text string
	if err := chromedp.Run(evalCtx, chromedp.Evaluate("("+bodyTextFunc+")()", &text)); err != nil {
		return "", classify(ctx, evalCtx, err, ErrEvaluation, ErrEvaluation, "read body text")
	}
	return text, nil
}

// Settle sleeps inside the tab so cancellation of the tab ends it too
func (s *ChromeSession) Settle(ctx context.Context, d time.Duration) error {
	sleepCtx, cancel := withTimeout(s.tabCtx, ctx, d+time.Second)
	defer cancel()

	if err := chromedp.Run(sleepCtx, chromedp.Sleep(d)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Close shuts the tab and the browser process down
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.tabCtx)
		s.tabCancel()
		s.allocCancel()
		s.logger.Debug("browser closed", "engine", "chromedp")
	})
	return s.closeErr
}
