package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/docscrape/internal/config"
	"github.com/go-scripts/docscrape/internal/scraper"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, CLIFlags{})
	assert.Equal(t, config.Default(), cfg)

	applyFlags(cfg, CLIFlags{
		OutputDir:      "elsewhere",
		Engine:         config.EngineRod,
		Headful:        true,
		BlockResources: true,
		Debug:          true,
	})
	assert.Equal(t, "elsewhere", cfg.OutputDir)
	assert.Equal(t, config.EngineRod, cfg.Engine)
	assert.False(t, cfg.Headless)
	assert.True(t, cfg.BlockResources)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestTrackerOptionsWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, trackerOptions(&buf, false).Status)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docscrape.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunStatic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>%s</title></head><body><main>content of %s</main></body></html>`, r.URL.Path, r.URL.Path)
	}))
	defer srv.Close()

	outDir := filepath.Join(t.TempDir(), "docs")
	path := writeConfig(t, fmt.Sprintf(`
engine: static
settle_delay: 0s
pages:
  - %[1]s/docs/api/monitors
  - %[1]s/docs/api/incidents
trailing:
  url: %[1]s/notion
  file: notion_api_docs.txt
`, srv.URL))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), CLIFlags{ConfigFile: path, OutputDir: outDir}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.FileExists(t, filepath.Join(outDir, "monitors.json"))
	assert.FileExists(t, filepath.Join(outDir, "incidents.json"))
	assert.FileExists(t, filepath.Join(outDir, "notion_api_docs.txt"))
	assert.Contains(t, stdout.String(), "Scraped 2 pages successfully")
	host := srv.Listener.Addr().(*net.TCPAddr).IP.String()
	assert.Contains(t, stdout.String(), "\nScraping "+host+" page...\n")
	assert.Contains(t, stdout.String(), "✅ Saved "+host+" docs to ")
	assert.NotContains(t, stdout.String(), "Notion")
}

func TestRunTrailingFailureFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/notion" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><article>docs</article></body></html>`)
	}))
	defer srv.Close()

	outDir := t.TempDir()
	path := writeConfig(t, fmt.Sprintf(`
engine: static
settle_delay: 0s
pages:
  - %[1]s/docs/api/reports
trailing:
  url: %[1]s/notion
  file: notion.txt
  name: Wiki
`, srv.URL))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), CLIFlags{ConfigFile: path, OutputDir: outDir}, &stdout, &stderr)
	assert.ErrorIs(t, err, scraper.ErrTrailingPage)
	assert.FileExists(t, filepath.Join(outDir, "reports.json"))
	assert.NoFileExists(t, filepath.Join(outDir, "notion.txt"))
	assert.Contains(t, stdout.String(), "\nScraping Wiki page...\n")
	assert.Contains(t, stdout.String(), "Scraped 1 pages successfully")
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name  string
		flags func(t *testing.T) CLIFlags
		want  error
	}{
		{"missing file", func(t *testing.T) CLIFlags {
			return CLIFlags{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}
		}, config.ErrConfigNotFound},
		{"unknown engine", func(t *testing.T) CLIFlags {
			return CLIFlags{ConfigFile: writeConfig(t, "engine: lynx\n")}
		}, config.ErrUnknownEngine},
		{"engine flag", func(t *testing.T) CLIFlags {
			return CLIFlags{ConfigFile: writeConfig(t, "output_dir: x\n"), Engine: "lynx"}
		}, config.ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.flags(t), &stdout, &stderr)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, stdout.String())
			assert.NotEmpty(t, stderr.String())
		})
	}
}
