package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/gocolly/colly/v2"
)

// errNoDocument is returned when a read happens before a successful Navigate
var errNoDocument = errors.New("no page loaded")

// StaticSession fetches pages without running JavaScript. It serves pages
// that are rendered on the server and keeps the same selector semantics as
// the browser engines.
type StaticSession struct {
	userAgent string
	logger    *log.Logger
	doc       *goquery.Document
}

// NewStatic returns a session backed by plain HTTP
func NewStatic(opts Options) *StaticSession {
	opts.Logger.Debug("browser started", "engine", "static")
	return &StaticSession{
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
}

// Navigate fetches url and parses the response body
func (s *StaticSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	s.doc = nil

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.StdlibContext(fetchCtx),
	)
	if s.userAgent != "" {
		c.UserAgent = s.userAgent
	}
	c.SetRequestTimeout(timeout)
	// colly truncates bodies past 10 MiB without an error
	c.MaxBodySize = 0

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(url); err != nil {
		return classify(ctx, fetchCtx, err, ErrNavigationTimeout, ErrNavigation, url)
	}
	if body == nil {
		return fmt.Errorf("%w: %s: empty response", ErrNavigation, url)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	s.doc = doc
	return nil
}

// WaitForContent checks the parsed document once. Without scripts it cannot
// change, so waiting longer would not help.
func (s *StaticSession) WaitForContent(ctx context.Context, selectors []string, timeout time.Duration) error {
	if s.doc == nil {
		return fmt.Errorf("%w: %v", ErrSelectorTimeout, errNoDocument)
	}
	query := joinSelectors(selectors)
	if s.doc.Find(query).Length() == 0 {
		return fmt.Errorf("%w: %s: no match in static document", ErrSelectorTimeout, query)
	}
	return nil
}

// Extract applies the selector chain to the parsed document
func (s *StaticSession) Extract(ctx context.Context, selectors []string) (Extraction, error) {
	if s.doc == nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrEvaluation, errNoDocument)
	}

	container, matched := firstMatch(s.doc, selectors)
	copied := stripped(container)

	html, err := copied.Html()
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: render container: %v", ErrEvaluation, err)
	}

	return Extraction{
		Title:   strings.TrimSpace(s.doc.Find("title").First().Text()),
		Text:    strings.TrimSpace(copied.Text()),
		HTML:    html,
		Matched: matched,
	}, nil
}

// BodyText returns the text of the document body
func (s *StaticSession) BodyText(ctx context.Context) (string, error) {
	if s.doc == nil {
		return "", fmt.Errorf("%w: %v", ErrEvaluation, errNoDocument)
	}
	return strings.TrimSpace(stripped(s.doc.Find(BodySelector).First()).Text()), nil
}

// Settle waits d
func (s *StaticSession) Settle(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// Close drops the parsed document
func (s *StaticSession) Close() error {
	s.doc = nil
	return nil
}

// firstMatch returns the first element matching selectors in priority
// order, or the body when none does.
func firstMatch(doc *goquery.Document, selectors []string) (*goquery.Selection, string) {
	for _, selector := range selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel, selector
		}
	}
	return doc.Find(BodySelector).First(), BodySelector
}

// stripped returns a detached copy of sel without script and style elements
func stripped(sel *goquery.Selection) *goquery.Selection {
	copied := sel.Clone()
	copied.Find(strippedTags).Remove()
	return copied
}
