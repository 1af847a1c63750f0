// Package classifier groups parsed files into feature buckets using keyword
// heuristics over directory paths, file names and symbol names.
//
// Matching is case-insensitive substring containment, evaluated against an
// ordered feature table where the first match wins. Substring matching is
// intentionally coarse: "database" also matches "databasement", and
// "usermodel" lands in Authentication because that feature is listed first.
package classifier

import (
	"path"
	"strings"

	"github.com/julianshen/docsynth/internal/parser"
)

// Other is the catch-all label for files no keyword matched.
const Other = "Other"

// Feature is a label with the keywords that select it.
type Feature struct {
	Label    string
	Keywords []string
}

// Features is the ordered feature table. Order is priority.
var Features = []Feature{
	{Label: "Authentication", Keywords: []string{"auth", "login", "logout", "signin", "signup", "password", "user", "session"}},
	{Label: "API", Keywords: []string{"api", "endpoint", "route", "controller", "handler"}},
	{Label: "Database", Keywords: []string{"database", "db", "model", "schema", "migration", "repository", "query"}},
	{Label: "UI", Keywords: []string{"component", "view", "page", "screen", "layout", "widget", "ui"}},
	{Label: "Utilities", Keywords: []string{"util", "helper", "common", "lib"}},
	{Label: "Testing", Keywords: []string{"test", "spec", "mock", "fixture"}},
	{Label: "Configuration", Keywords: []string{"config", "setting", "env"}},
	{Label: "Security", Keywords: []string{"security", "crypto", "encrypt", "permission", "guard"}},
	{Label: "Logging", Keywords: []string{"log", "monitor", "metric", "trace"}},
	{Label: "Middleware", Keywords: []string{"middleware", "interceptor"}},
}

// Stage names which signal decided a file's feature.
type Stage string

const (
	StagePath     Stage = "path"
	StageFileName Stage = "filename"
	StageSymbols  Stage = "symbols"
	StageNone     Stage = "none"
)

// Group is one feature bucket.
type Group struct {
	Label string
	Files []parser.ParsedFile
}

// FeatureGroups maps feature labels to files. Groups are kept in feature
// table order with Other last; empty groups are never present.
type FeatureGroups []Group

// Get returns the files for label.
func (g FeatureGroups) Get(label string) ([]parser.ParsedFile, bool) {
	for _, grp := range g {
		if grp.Label == label {
			return grp.Files, true
		}
	}
	return nil, false
}

// Labels returns the group labels in order.
func (g FeatureGroups) Labels() []string {
	labels := make([]string, len(g))
	for i, grp := range g {
		labels[i] = grp.Label
	}
	return labels
}

// FileCount returns the total number of files across groups.
func (g FeatureGroups) FileCount() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Files)
	}
	return n
}

// Classify assigns every file to exactly one feature group.
func Classify(files []parser.ParsedFile) FeatureGroups {
	buckets := make(map[string][]parser.ParsedFile)
	for _, f := range files {
		label, _ := ClassifyFile(f)
		buckets[label] = append(buckets[label], f)
	}

	var groups FeatureGroups
	for _, feat := range Features {
		if members := buckets[feat.Label]; len(members) > 0 {
			groups = append(groups, Group{Label: feat.Label, Files: members})
		}
	}
	if members := buckets[Other]; len(members) > 0 {
		groups = append(groups, Group{Label: Other, Files: members})
	}
	return groups
}

// ClassifyFile returns the feature label for f and the stage that decided it.
// Stages run in priority order: directory path, file base name, then the
// concatenated symbol names.
func ClassifyFile(f parser.ParsedFile) (string, Stage) {
	p := strings.ToLower(path.Clean(strings.ReplaceAll(f.Path, "\\", "/")))

	dir := path.Dir(p)
	if dir == "." {
		dir = ""
	}
	if label, ok := match(dir); ok {
		return label, StagePath
	}
	if label, ok := match(path.Base(p)); ok {
		return label, StageFileName
	}
	symbols := strings.ToLower(strings.Join(parser.SymbolNames(f), ""))
	if label, ok := match(symbols); ok {
		return label, StageSymbols
	}
	return Other, StageNone
}

func match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, feat := range Features {
		for _, kw := range feat.Keywords {
			if strings.Contains(text, kw) {
				return feat.Label, true
			}
		}
	}
	return "", false
}
