package output

import (
	"encoding/json"

	"github.com/julianshen/docsynth/internal/jobs"
)

// JSONFormatter outputs jobs as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals the job as indented JSON.
func (f *JSONFormatter) Format(job jobs.Job) ([]byte, error) {
	return marshal(job)
}

// FormatList marshals the jobs as an indented JSON array.
func (f *JSONFormatter) FormatList(list []jobs.Job) ([]byte, error) {
	if list == nil {
		list = []jobs.Job{}
	}
	return marshal(list)
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
