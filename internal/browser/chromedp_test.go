package browser

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/docscrape/internal/config"
)

// renderedPage builds its content container from script after load, the
// way the documentation site does.
const renderedPage = `<!doctype html>
<html><head><title>Rendered</title></head>
<body>
<div id="root"></div>
<script>
setTimeout(() => {
	const main = document.createElement("main");
	main.innerHTML = "<h1>Monitors</h1><p>Rendered by script</p><style>h1{}</style>";
	document.getElementById("root").appendChild(main);
}, 200);
</script>
</body></html>`

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser test skipped in short mode")
	}
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome or Chromium binary on PATH")
}

func TestChromedpSession(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(renderedPage))
	}))
	defer srv.Close()

	ctx := context.Background()
	s, err := NewChromedp(ctx, Options{
		Headless:  true,
		NoSandbox: true,
		UserAgent: config.DefaultUserAgent,
		Logger:    log.New(io.Discard),
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, srv.URL, 30*time.Second))
	require.NoError(t, s.WaitForContent(ctx, config.DefaultSelectors, 10*time.Second))

	got, err := s.Extract(ctx, config.DefaultSelectors)
	require.NoError(t, err)
	assert.Equal(t, "main", got.Matched)
	assert.Equal(t, "Rendered", got.Title)
	assert.Contains(t, got.Text, "Rendered by script")
	assert.Contains(t, got.HTML, "<h1>Monitors</h1>")
	assert.NotContains(t, got.HTML, "<style>")

	text, err := s.BodyText(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Monitors")

	// only the copy was stripped, the live page keeps its style element
	var styles int
	require.NoError(t, chromedp.Run(s.tabCtx, chromedp.Evaluate(`document.querySelectorAll("main style").length`, &styles)))
	assert.Equal(t, 1, styles)

	require.NoError(t, s.Settle(ctx, 10*time.Millisecond))

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestChromedpSelectorTimeout(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer srv.Close()

	ctx := context.Background()
	s, err := NewChromedp(ctx, Options{Headless: true, NoSandbox: true, Logger: log.New(io.Discard)})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, srv.URL, 30*time.Second))
	err = s.WaitForContent(ctx, config.DefaultSelectors, 500*time.Millisecond)
	assert.ErrorIs(t, err, ErrSelectorTimeout)

	got, err := s.Extract(ctx, config.DefaultSelectors)
	require.NoError(t, err)
	assert.Equal(t, BodySelector, got.Matched)
	assert.Contains(t, got.Text, "nothing here")
}

func TestChromedpNavigateTimeout(t *testing.T) {
	requireChrome(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><main>waiting</main><img src="/hang"></body></html>`))
	})
	// keeps the page from ever going network idle
	mux.HandleFunc("/hang", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	s, err := NewChromedp(ctx, Options{Headless: true, NoSandbox: true, Logger: log.New(io.Discard)})
	require.NoError(t, err)
	defer s.Close()

	err = s.Navigate(ctx, srv.URL, 500*time.Millisecond)
	require.ErrorIs(t, err, ErrNavigationTimeout)
	assert.Contains(t, err.Error(), srv.URL)
}
