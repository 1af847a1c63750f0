package wiki

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianshen/docsynth/internal/classifier"
	"github.com/julianshen/docsynth/internal/frontmatter"
	"github.com/julianshen/docsynth/internal/generator"
)

const (
	overviewFile = "overview.md"
	indexFile    = "index.md"
)

// Materializer writes generated documents into a docs tree and rebuilds the
// navigation files.
type Materializer struct {
	Root string
	// CategoryOf picks the category label for a document. Nil uses
	// Document.Category.
	CategoryOf func(generator.Document) string
	// Revision, when set, is mentioned on the overview page.
	Revision string
	Clock    func() time.Time
}

// NewMaterializer creates a Materializer rooted at root.
func NewMaterializer(root string, categoryOf func(generator.Document) string) *Materializer {
	return &Materializer{
		Root:       root,
		CategoryOf: categoryOf,
		Clock:      time.Now,
	}
}

// Materialize writes docs under root and returns the rebuilt navigation tree.
func Materialize(docs []generator.Document, root string, categoryOf func(generator.Document) string) (NavigationNode, error) {
	res, err := NewMaterializer(root, categoryOf).Materialize(docs)
	return res.Navigation, err
}

// section is one category as it appears on the overview page.
type section struct {
	label string
	slug  string
	pages []page
}

type page struct {
	id    string
	title string
}

// Materialize writes each document to <root>/<category>/<id>.md, creates a
// category index page when none exists, regenerates overview.md and the
// sidebar files. A document that cannot be written is logged and listed in
// Failed; the returned error covers only the overview and navigation.
func (m *Materializer) Materialize(docs []generator.Document) (MaterializeResult, error) {
	var res MaterializeResult
	if err := os.MkdirAll(m.Root, 0o755); err != nil {
		return res, fmt.Errorf("%w: creating %s: %w", ErrWrite, m.Root, err)
	}

	var sections []*section
	bySlug := make(map[string]*section)
	written := make(map[string]bool)
	for _, doc := range docs {
		label := m.category(doc)
		slug := generator.Slug(label)
		sec, ok := bySlug[slug]
		if !ok {
			sec = &section{label: label, slug: slug}
			bySlug[slug] = sec
			sections = append(sections, sec)
			m.ensureIndex(sec)
		}

		id := doc.ID
		if id == "" {
			id = doc.Title
		}
		// Slugging keeps ids like "../x" inside the category directory.
		id = generator.Slug(id)
		rel := path.Join(slug, id+".md")
		if written[rel] {
			log.Printf("WARNING: %v: duplicate document id %q in %s", ErrWrite, id, slug)
			res.Failed = append(res.Failed, id)
			continue
		}
		content := frontmatter.Format(frontmatter.Fields{
			ID:              id,
			Title:           doc.Title,
			SidebarPosition: doc.SidebarPosition,
		}, frontmatter.Strip(doc.Body))

		if err := writeDoc(filepath.Join(m.Root, filepath.FromSlash(rel)), content); err != nil {
			log.Printf("WARNING: %v: %v", ErrWrite, err)
			res.Failed = append(res.Failed, id)
			continue
		}
		written[rel] = true
		res.Written = append(res.Written, rel)
		sec.pages = append(sec.pages, page{id: id, title: doc.Title})
	}

	var errs []error
	ordered := make([]section, len(sections))
	for i, s := range sections {
		ordered[i] = *s
	}
	if err := writeDoc(filepath.Join(m.Root, overviewFile), m.overview(ordered)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrWrite, err))
	} else {
		res.Written = append(res.Written, overviewFile)
	}

	nav, err := writeNavigation(m.Root)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: navigation: %w", ErrWrite, err))
	}
	res.Navigation = nav
	return res, errors.Join(errs...)
}

func (m *Materializer) category(doc generator.Document) string {
	label := doc.Category
	if m.CategoryOf != nil {
		label = m.CategoryOf(doc)
	}
	if strings.TrimSpace(label) == "" {
		return classifier.Other
	}
	return label
}

// ensureIndex writes <slug>/index.md unless the file already exists, so
// hand-edited index pages survive regeneration.
func (m *Materializer) ensureIndex(sec *section) {
	target := filepath.Join(m.Root, sec.slug, indexFile)
	if _, err := os.Stat(target); err == nil {
		return
	}
	body := fmt.Sprintf("# %s\n\nDocumentation for the %s feature area.\n", sec.label, sec.label)
	content := frontmatter.Format(frontmatter.Fields{ID: "index", Title: sec.label}, body)
	if err := writeDoc(target, content); err != nil {
		log.Printf("WARNING: %v: %v", ErrWrite, err)
	}
}

func (m *Materializer) overview(sections []section) string {
	var b strings.Builder
	b.WriteString("# Documentation Overview\n\n")

	clock := m.Clock
	if clock == nil {
		clock = time.Now
	}
	fmt.Fprintf(&b, "Generated by docsynth on %s", clock().UTC().Format("2006-01-02"))
	if m.Revision != "" {
		fmt.Fprintf(&b, " from revision `%s`", m.Revision)
	}
	b.WriteString(".\n\n")

	if len(sections) == 0 {
		b.WriteString("No documents were generated.\n")
		return frontmatter.Format(frontmatter.Fields{ID: "overview", Title: "Overview"}, b.String())
	}

	b.WriteString("## Feature Map\n\n")
	writeMermaidBlock(&b, featureMapDiagram(sections))

	for _, s := range sections {
		if len(s.pages) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", sanitizeMarkdown(s.label))
		for _, p := range s.pages {
			fmt.Fprintf(&b, "- [%s](./%s/%s.md)\n", linkText(p.title), s.slug, p.id)
		}
	}
	return frontmatter.Format(frontmatter.Fields{ID: "overview", Title: "Overview"}, b.String())
}

// writeDoc writes content to path, creating parent directories.
func writeDoc(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// sanitizeMarkdown escapes HTML-significant characters in headings.
func sanitizeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func linkText(s string) string {
	r := strings.NewReplacer("[", `\[`, "]", `\]`)
	return r.Replace(sanitizeMarkdown(s))
}
