// Package output renders job snapshots for the status command.
package output

import (
	"fmt"

	"github.com/julianshen/docsynth/internal/jobs"
)

// Formatter formats job snapshots into output bytes.
type Formatter interface {
	Format(job jobs.Job) ([]byte, error)
	FormatList(list []jobs.Job) ([]byte, error)
}

// NewFormatter returns the formatter registered under name ("json" or
// "markdown").
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(), nil
	case "markdown", "md":
		return NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or markdown)", name)
	}
}
