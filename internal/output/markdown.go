package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianshen/docsynth/internal/jobs"
)

const barWidth = 20

// MarkdownFormatter outputs jobs as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders one job with its full log.
func (f *MarkdownFormatter) Format(job jobs.Job) ([]byte, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("## Job `%s`\n\n", job.ID))
	b.WriteString(fmt.Sprintf("**Status:** %s  \n", job.Status))
	b.WriteString(fmt.Sprintf("**Progress:** `%s` %d%%  \n", progressBar(job.Progress), job.Progress))
	if job.Step != "" {
		b.WriteString(fmt.Sprintf("**Step:** %s  \n", job.Step))
	}
	if !job.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("**Updated:** %s\n", job.UpdatedAt.UTC().Format(time.RFC3339)))
	}

	if job.Status == jobs.StatusFailed && len(job.Log) > 0 {
		b.WriteString("\n### Error\n\n")
		b.WriteString(job.Log[len(job.Log)-1])
		b.WriteString("\n")
	}

	if len(job.Log) > 0 {
		b.WriteString("\n### Log\n\n")
		for _, line := range job.Log {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return []byte(b.String()), nil
}

// FormatList renders a summary table.
func (f *MarkdownFormatter) FormatList(list []jobs.Job) ([]byte, error) {
	if len(list) == 0 {
		return []byte("No jobs recorded.\n"), nil
	}

	var b strings.Builder
	b.WriteString("| ID | Status | Progress | Step |\n")
	b.WriteString("|----|--------|----------|------|\n")
	for _, j := range list {
		b.WriteString(fmt.Sprintf("| `%s` | %s | %d%% | %s |\n", j.ID, j.Status, j.Progress, strings.ReplaceAll(j.Step, "|", `\|`)))
	}

	noun := "jobs"
	if len(list) == 1 {
		noun = "job"
	}
	b.WriteString(fmt.Sprintf("\n*%d %s*\n", len(list), noun))
	return []byte(b.String()), nil
}

func progressBar(p int) string {
	p = min(max(p, 0), 100)
	filled := p * barWidth / 100
	return strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
}
