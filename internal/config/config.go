// Package config holds the scraper settings. The defaults reproduce the
// Hyperping API documentation capture; a YAML file may override any of them.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Browser engines
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
	EngineStatic   = "static"
)

const (
	DefaultOutputDir         = "docs_scraped"
	DefaultUserAgent         = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSelectorTimeout   = 10 * time.Second
	DefaultSettleDelay       = 3 * time.Second

	NotionAPIDocsURL  = "https://hyperping.notion.site/Hyperping-API-documentation-a0dc48fb818e4542a8f7fb4163ede2c3"
	NotionAPIDocsFile = "notion_api_docs.txt"
	NotionLabel       = "Notion"
)

// DefaultPages is the fixed list of documentation pages
var DefaultPages = []string{
	"https://hyperping.com/docs/api/overview",
	"https://hyperping.com/docs/api/monitors",
	"https://hyperping.com/docs/api/statuspages",
	"https://hyperping.com/docs/api/maintenance",
	"https://hyperping.com/docs/api/incidents",
	"https://hyperping.com/docs/api/outages",
	"https://hyperping.com/docs/api/healthchecks",
	"https://hyperping.com/docs/api/reports",
}

// DefaultSelectors lists content containers in priority order. The first
// match wins; body is the fallback when none match.
var DefaultSelectors = []string{
	"main",
	"article",
	".documentation",
	".notion-page-content",
}

// TrailingPage is the single page visited after the fixed list. Only its
// body text is captured.
type TrailingPage struct {
	URL  string `yaml:"url"`
	File string `yaml:"file"`
	// Name is how progress lines refer to the page. See Label.
	Name string `yaml:"name"`
}

// Label returns Name when set. Otherwise the built-in page is called
// "Notion" and any other page goes by its host.
func (p TrailingPage) Label() string {
	if p.Name != "" {
		return p.Name
	}
	if p.URL == NotionAPIDocsURL {
		return NotionLabel
	}
	if u, err := url.Parse(p.URL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "trailing"
}

// Configuration holds all the settings for a scrape run
type Configuration struct {
	OutputDir         string        `yaml:"output_dir"`
	Pages             []string      `yaml:"pages"`
	Trailing          TrailingPage  `yaml:"trailing"`
	Selectors         []string      `yaml:"selectors"`
	UserAgent         string        `yaml:"user_agent"`
	Engine            string        `yaml:"engine"`
	Headless          bool          `yaml:"headless"`
	NoSandbox         bool          `yaml:"no_sandbox"`
	BlockResources    bool          `yaml:"block_resources"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SelectorTimeout   time.Duration `yaml:"selector_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	LogLevel          string        `yaml:"log_level"`
}

// Default returns the built-in configuration
func Default() *Configuration {
	return &Configuration{
		OutputDir: DefaultOutputDir,
		Pages:     append([]string(nil), DefaultPages...),
		Trailing: TrailingPage{
			URL:  NotionAPIDocsURL,
			File: NotionAPIDocsFile,
		},
		Selectors:         append([]string(nil), DefaultSelectors...),
		UserAgent:         DefaultUserAgent,
		Engine:            EngineChromedp,
		Headless:          true,
		NavigationTimeout: DefaultNavigationTimeout,
		SelectorTimeout:   DefaultSelectorTimeout,
		SettleDelay:       DefaultSettleDelay,
		LogLevel:          "info",
	}
}

// Validate checks the configuration for values the scraper cannot run with
func (c *Configuration) Validate() error {
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if len(c.Pages) == 0 {
		return ErrNoPages
	}
	for _, p := range c.Pages {
		if _, err := url.ParseRequestURI(p); err != nil {
			return fmt.Errorf("invalid page URL %q: %w", p, err)
		}
	}
	if c.Trailing.URL == "" || c.Trailing.File == "" {
		return ErrNoTrailingURL
	}
	if _, err := url.ParseRequestURI(c.Trailing.URL); err != nil {
		return fmt.Errorf("invalid trailing URL %q: %w", c.Trailing.URL, err)
	}
	if len(c.Selectors) == 0 {
		return ErrNoSelectors
	}
	if c.NavigationTimeout <= 0 || c.SelectorTimeout <= 0 || c.SettleDelay < 0 {
		return ErrInvalidTimeout
	}
	switch c.Engine {
	case EngineChromedp, EngineRod, EngineStatic:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine)
	}
	return nil
}
