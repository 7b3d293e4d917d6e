package types

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// PageTask is a single documentation page to scrape and the file it is saved to
type PageTask struct {
	URL      string
	FileName string
}

// NewPageTask derives the output file name from the last path segment of rawURL
func NewPageTask(rawURL string) (PageTask, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PageTask{}, fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}
	return PageTask{
		URL:      rawURL,
		FileName: PageName(u) + ".json",
	}, nil
}

// Name is the file name without its extension, used as the results key
func (t PageTask) Name() string {
	return strings.TrimSuffix(t.FileName, path.Ext(t.FileName))
}

// PageName returns the last path segment of u. A URL without one falls back
// to its host, then to "index".
func PageName(u *url.URL) string {
	segment := path.Base(strings.TrimRight(u.Path, "/"))
	if segment != "" && segment != "." && segment != "/" {
		return segment
	}
	if host := u.Hostname(); host != "" {
		return strings.ReplaceAll(host, ".", "_")
	}
	return "index"
}

// ScrapedContent is the record persisted for every successfully scraped page
type ScrapedContent struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
	HTML  string `json:"html"`
}

// ResultsIndex maps page names to their extracted text for the run summary
type ResultsIndex map[string]string

// Record stores text under name. Pages without text are not counted.
func (r ResultsIndex) Record(name, text string) bool {
	if text == "" {
		return false
	}
	r[name] = text
	return true
}

// Count returns the number of recorded pages
func (r ResultsIndex) Count() int {
	return len(r)
}
