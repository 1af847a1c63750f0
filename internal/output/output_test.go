package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/julianshen/docsynth/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJob() jobs.Job {
	ts := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	return jobs.Job{
		ID:        "job-1",
		Status:    jobs.StatusGenerating,
		Progress:  45,
		Step:      "Generating Authentication",
		Log:       []string{"[2026-10-15T12:00:00Z] Scanning", "[2026-10-15T12:00:00Z] Found 3 source files"},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	f, err = NewFormatter("markdown")
	require.NoError(t, err)
	assert.IsType(t, &MarkdownFormatter{}, f)

	_, err = NewFormatter("xml")
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSONFormatter().Format(sampleJob())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "}\n"))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, "job-1", parsed["id"])
	assert.Equal(t, "GENERATING", parsed["status"])
	assert.Equal(t, float64(45), parsed["progress"])
	assert.Len(t, parsed["log"], 2)
}

func TestJSONFormatterEmptyList(t *testing.T) {
	out, err := NewJSONFormatter().FormatList(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(out))
}

func TestMarkdownFormatterBasic(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleJob())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "## Job `job-1`")
	assert.Contains(t, s, "**Status:** GENERATING")
	assert.Contains(t, s, "`#########-----------` 45%")
	assert.Contains(t, s, "**Step:** Generating Authentication")
	assert.Contains(t, s, "- [2026-10-15T12:00:00Z] Found 3 source files\n")
	assert.NotContains(t, s, "### Error")
}

func TestMarkdownFormatterFailedJob(t *testing.T) {
	j := sampleJob()
	j.Status = jobs.StatusFailed
	j.Log = append(j.Log, "[2026-10-15T12:00:01Z] Error: generate: permanent service error")

	out, err := NewMarkdownFormatter().Format(j)
	require.NoError(t, err)
	assert.Contains(t, string(out), "### Error\n\n[2026-10-15T12:00:01Z] Error: generate: permanent service error\n")
}

func TestMarkdownFormatterList(t *testing.T) {
	a := sampleJob()
	b := sampleJob()
	b.ID = "job-2"
	b.Status = jobs.StatusCompleted
	b.Progress = 100
	b.Step = "a|b"

	out, err := NewMarkdownFormatter().FormatList([]jobs.Job{a, b})
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "| `job-1` | GENERATING | 45% | Generating Authentication |")
	assert.Contains(t, s, "| `job-2` | COMPLETED | 100% | a\\|b |")
	assert.Contains(t, s, "*2 jobs*")

	out, err = NewMarkdownFormatter().FormatList(nil)
	require.NoError(t, err)
	assert.Equal(t, "No jobs recorded.\n", string(out))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("-", barWidth), progressBar(0))
	assert.Equal(t, strings.Repeat("#", barWidth), progressBar(100))
	assert.Equal(t, strings.Repeat("#", barWidth), progressBar(130))
}
