package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageTask(t *testing.T) {
	tests := []struct {
		url      string
		fileName string
		name     string
	}{
		{"https://hyperping.com/docs/api/overview", "overview.json", "overview"},
		{"https://hyperping.com/docs/api/statuspages", "statuspages.json", "statuspages"},
		{"https://hyperping.com/docs/api/monitors/", "monitors.json", "monitors"},
		{"https://hyperping.com/docs/api/reports?tab=1#top", "reports.json", "reports"},
		{"https://hyperping.com/", "hyperping_com.json", "hyperping_com"},
		{"https://hyperping.com", "hyperping_com.json", "hyperping_com"},
		{"/", "index.json", "index"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			task, err := NewPageTask(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.url, task.URL)
			assert.Equal(t, tt.fileName, task.FileName)
			assert.Equal(t, tt.name, task.Name())
		})
	}
}

func TestNewPageTaskInvalid(t *testing.T) {
	_, err := NewPageTask("http://[::1")
	assert.Error(t, err)
}

func TestResultsIndex(t *testing.T) {
	results := ResultsIndex{}

	assert.True(t, results.Record("overview", "some text"))
	assert.False(t, results.Record("monitors", ""))
	assert.True(t, results.Record("incidents", "more"))
	assert.Equal(t, 2, results.Count())

	// same name twice keeps a single entry
	assert.True(t, results.Record("overview", "newer"))
	assert.Equal(t, 2, results.Count())
	assert.Equal(t, "newer", results["overview"])
}
