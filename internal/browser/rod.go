package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodSession runs every navigation in one rod page
type RodSession struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	logger    *log.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewRod launches a browser through rod's launcher, downloading Chromium
// when no local browser is found.
func NewRod(ctx context.Context, opts Options) (*RodSession, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s := &RodSession{
		launcher: l,
		browser:  browser,
		logger:   opts.Logger,
	}

	p, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	s.page = p

	if opts.UserAgent != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if opts.BlockResources {
		if err := (proto.NetworkEnable{}).Call(p); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to enable network domain: %w", err)
		}
		if err := (proto.NetworkSetBlockedURLs{Urls: blockedResourcePatterns}).Call(p); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to block resources: %w", err)
		}
	}

	opts.Logger.Debug("browser started", "engine", "rod", "headless", opts.Headless, "block_resources", opts.BlockResources)
	return s, nil
}

// Navigate loads url and waits for the main frame to report network idle
func (s *RodSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := s.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if err := (proto.PageSetLifecycleEventsEnabled{Enabled: true}).Call(p); err != nil {
		return classify(ctx, p.GetContext(), err, ErrNavigationTimeout, ErrNavigation, url)
	}

	// only the main frame counts, it shares its id with the page target
	watch := idleWatch{frame: string(s.page.FrameID)}
	wait := p.EachEvent(func(e *proto.PageLifecycleEvent) bool {
		return watch.observe(string(e.FrameID), string(e.Name))
	})

	if err := p.Navigate(url); err != nil {
		return classify(ctx, p.GetContext(), err, ErrNavigationTimeout, ErrNavigation, url)
	}
	wait()

	if err := p.GetContext().Err(); err != nil {
		return classify(ctx, p.GetContext(), err, ErrNavigationTimeout, ErrNavigation, url)
	}
	return nil
}

// WaitForContent waits for any of selectors to be present and visible
func (s *RodSession) WaitForContent(ctx context.Context, selectors []string, timeout time.Duration) error {
	p := s.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	query := joinSelectors(selectors)
	el, err := p.Element(query)
	if err == nil {
		err = el.WaitVisible()
	}
	if err != nil {
		return classify(ctx, p.GetContext(), err, ErrSelectorTimeout, ErrSelectorTimeout, query)
	}
	return nil
}

// Extract evaluates the selector chain inside the page
func (s *RodSession) Extract(ctx context.Context, selectors []string) (Extraction, error) {
	p := s.page.Context(ctx).Timeout(evalTimeout)
	defer p.CancelTimeout()

	if selectors == nil {
		selectors = []string{}
	}

	obj, err := p.Eval(extractFunc, selectors)
	if err != nil {
		return Extraction{}, classify(ctx, p.GetContext(), err, ErrEvaluation, ErrEvaluation, "extract content")
	}

	raw, err := obj.Value.MarshalJSON()
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: decode extraction: %v", ErrEvaluation, err)
	}

	var out Extraction
	if err := json.Unmarshal(raw, &out); err != nil {
		return Extraction{}, fmt.Errorf("%w: decode extraction: %v", ErrEvaluation, err)
	}
	return out, nil
}

// BodyText returns document.body.innerText
func (s *RodSession) BodyText(ctx context.Context) (string, error) {
	p := s.page.Context(ctx).Timeout(evalTimeout)
	defer p.CancelTimeout()

	obj, err := p.Eval(bodyTextFunc)
	if err != nil {
		return "", classify(ctx, p.GetContext(), err, ErrEvaluation, ErrEvaluation, "read body text")
	}
	return obj.Value.Str(), nil
}

// Settle waits d
func (s *RodSession) Settle(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// Close shuts the browser down and removes its profile directory
func (s *RodSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()
		s.launcher.Cleanup()
		s.logger.Debug("browser closed", "engine", "rod")
	})
	return s.closeErr
}
