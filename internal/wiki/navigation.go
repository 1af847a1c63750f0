package wiki

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianshen/docsynth/internal/frontmatter"
)

// SidebarFile is the navigation file written at the docs root and in each
// category directory.
const SidebarFile = "sidebar.json"

// BuildNavigation walks root and returns a category node whose children
// mirror the directory tree. It reads only what is on disk, so running it
// twice over the same tree yields the same result.
func BuildNavigation(root string) (NavigationNode, error) {
	children, err := buildDir(root, "", nil)
	if err != nil {
		return NavigationNode{}, err
	}
	return NavigationNode{Type: NodeCategory, Children: children}, nil
}

// FormatNavigation serializes a node list as indented JSON with a trailing
// newline. Every sidebar file goes through it.
func FormatNavigation(nodes []NavigationNode) ([]byte, error) {
	if nodes == nil {
		nodes = []NavigationNode{}
	}
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding navigation: %w", err)
	}
	return append(data, '\n'), nil
}

// writeNavigation rebuilds the tree and writes a sidebar file for the root
// and for every category directory.
func writeNavigation(root string) (NavigationNode, error) {
	sidebars := make(map[string][]NavigationNode)
	children, err := buildDir(root, "", sidebars)
	if err != nil {
		return NavigationNode{}, err
	}

	dirs := make([]string, 0, len(sidebars))
	for rel := range sidebars {
		dirs = append(dirs, rel)
	}
	sort.Strings(dirs)

	var errs []error
	for _, rel := range dirs {
		data, err := FormatNavigation(sidebars[rel])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(rel), SidebarFile)
		if err := writeDoc(target, string(data)); err != nil {
			errs = append(errs, err)
		}
	}
	return NavigationNode{Type: NodeCategory, Children: children}, errors.Join(errs...)
}

// buildDir lists the docs in root/rel followed by its non-empty
// subdirectories. When sidebars is non-nil each visited directory's node
// list is recorded under its relative path.
func buildDir(root, rel string, sidebars map[string][]NavigationNode) ([]NavigationNode, error) {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var docs, subdirs []os.DirEntry
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case e.IsDir():
			subdirs = append(subdirs, e)
		case isMarkdown(name):
			docs = append(docs, e)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := docRank(docs[i].Name()), docRank(docs[j].Name())
		if ri != rj {
			return ri < rj
		}
		return docs[i].Name() < docs[j].Name()
	})

	nodes := []NavigationNode{}
	for _, d := range docs {
		id := docID(filepath.Join(dir, d.Name()))
		if rel != "" {
			id = path.Join(rel, id)
		}
		nodes = append(nodes, NavigationNode{Type: NodeDoc, ID: id})
	}

	for _, sd := range subdirs {
		subRel := path.Join(rel, sd.Name())
		children, err := buildDir(root, subRel, sidebars)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			continue
		}
		nodes = append(nodes, NavigationNode{
			Type:     NodeCategory,
			Label:    categoryLabel(filepath.Join(root, filepath.FromSlash(subRel)), sd.Name()),
			Children: children,
		})
	}

	if sidebars != nil {
		sidebars[rel] = nodes
	}
	return nodes, nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

// docRank sorts index pages first, then the overview, then everything else.
func docRank(name string) int {
	switch strings.TrimSuffix(name, filepath.Ext(name)) {
	case "index":
		return 0
	case "overview":
		return 1
	default:
		return 2
	}
}

// docID is the front matter id of the file at p, or its stem.
func docID(p string) string {
	stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	data, err := os.ReadFile(p)
	if err != nil {
		return stem
	}
	f, _, err := frontmatter.Parse(string(data))
	if err != nil || f.ID == "" {
		return stem
	}
	return f.ID
}

// categoryLabel is the title of the directory's index page, or its name.
func categoryLabel(dir, name string) string {
	for _, idx := range []string{"index.md", "index.mdx"} {
		data, err := os.ReadFile(filepath.Join(dir, idx))
		if err != nil {
			continue
		}
		if f, _, err := frontmatter.Parse(string(data)); err == nil && f.Title != "" {
			return f.Title
		}
	}
	return name
}
