package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/julianshen/docsynth/internal/classifier"
	"github.com/julianshen/docsynth/internal/parser"
)

// Mode selects the granularity of generated documents.
type Mode string

const (
	// ModeGroup produces one document per feature group.
	ModeGroup Mode = "group"
	// ModeFile produces one document per source file.
	ModeFile Mode = "file"
)

// ParseMode converts a configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeGroup, "":
		return ModeGroup, nil
	case ModeFile:
		return ModeFile, nil
	}
	return "", fmt.Errorf("unknown generation mode %q", s)
}

// Unit is one piece of work for the Orchestrator.
type Unit struct {
	ID string
	// DocID overrides the document id derived from ID. UnitsFromGroups sets
	// it when two units would otherwise share a slug.
	DocID    string
	Title    string
	Category string
	Mode     Mode
	Files    []parser.ParsedFile
	Sources  map[string][]byte
	Position int
}

// UnitsFromGroups builds units from classified files. In group mode each
// group becomes a unit positioned by group order; in file mode each file
// becomes a unit positioned within its group.
func UnitsFromGroups(groups classifier.FeatureGroups, sources map[string][]byte, mode Mode) []Unit {
	var units []Unit
	for gi, g := range groups {
		if mode == ModeFile {
			for fi, f := range g.Files {
				units = append(units, Unit{
					ID:       f.Path,
					Title:    path.Base(f.Path),
					Category: g.Label,
					Mode:     ModeFile,
					Files:    []parser.ParsedFile{f},
					Sources:  pick(sources, f.Path),
					Position: fi + 1,
				})
			}
			continue
		}

		paths := make([]string, len(g.Files))
		for i, f := range g.Files {
			paths[i] = f.Path
		}
		units = append(units, Unit{
			ID:       g.Label,
			Title:    g.Label,
			Category: g.Label,
			Mode:     ModeGroup,
			Files:    g.Files,
			Sources:  pick(sources, paths...),
			Position: gi + 1,
		})
	}
	disambiguate(units)
	return units
}

// disambiguate gives every unit whose slug is shared with another unit an
// id suffixed by a short hash of its original ID. All members of a
// colliding set are renamed, so the result does not depend on order.
func disambiguate(units []Unit) {
	count := make(map[string]int, len(units))
	for _, u := range units {
		count[u.DocumentID()]++
	}
	for i, u := range units {
		id := u.DocumentID()
		if count[id] > 1 {
			units[i].DocID = id + "-" + shortHash(u.ID)
		}
	}
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:4])
}

// DocumentID is the slug used for the unit's document id and file name.
func (u Unit) DocumentID() string {
	if u.DocID != "" {
		return u.DocID
	}
	return Slug(u.ID)
}

func pick(sources map[string][]byte, paths ...string) map[string][]byte {
	out := make(map[string][]byte, len(paths))
	for _, p := range paths {
		if src, ok := sources[p]; ok {
			out[p] = src
		}
	}
	return out
}

// Paths lists the unit's files in order.
func (u Unit) Paths() []string {
	paths := make([]string, len(u.Files))
	for i, f := range u.Files {
		paths[i] = f.Path
	}
	return paths
}

// Content renders the unit's files as prompt material: a header, the symbol
// outline and the source of each file, in file order.
func (u Unit) Content() string {
	var b strings.Builder
	for _, f := range u.Files {
		lang := f.Language
		if lang == "" {
			lang = parser.LanguageFor(f.Path)
		}
		fmt.Fprintf(&b, "## File: %s [%s]\n", f.Path, lang)
		if outline := parser.Outline(f); outline != "" {
			b.WriteString("### Symbols\n")
			b.WriteString(outline)
		}
		if src, ok := u.Sources[f.Path]; ok {
			b.WriteString("### Source\n```")
			b.WriteString(lang)
			b.WriteString("\n")
			b.Write(src)
			if len(src) > 0 && src[len(src)-1] != '\n' {
				b.WriteByte('\n')
			}
			b.WriteString("```\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

var (
	nonSlugRe   = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDashRe = regexp.MustCompile(`-{2,}`)
)

// Slug converts s to a lowercase identifier of letters, digits and hyphens.
// Path separators and dots become hyphens so file paths stay distinguishable.
func Slug(s string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(s), "-")
	slug = multiDashRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}
