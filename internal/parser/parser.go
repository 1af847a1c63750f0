// Package parser provides tree-sitter-based structural parsing of source
// files. Each supported language contributes an adapter that translates its
// concrete syntax tree into a common outline of named, line-ranged symbols.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrParse is returned when a file's source cannot be parsed cleanly.
var ErrParse = errors.New("parse error")

// Kind identifies the declaration form of a symbol.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindMethod    Kind = "method"
	KindInterface Kind = "interface"
	KindType      Kind = "type"
	KindEnum      Kind = "enum"
	KindVariable  Kind = "variable"
)

// IsContainer reports whether entries of this kind may own children.
func (k Kind) IsContainer() bool {
	return k == KindClass || k == KindInterface
}

// SourceFile is a single input file. The parser never mutates it.
type SourceFile struct {
	Path    string
	Content []byte
}

// SymbolEntry is a named declaration with its 1-based line range.
type SymbolEntry struct {
	Kind      Kind
	Name      string
	StartLine int
	EndLine   int
	Exported  bool
	Children  []SymbolEntry
}

// Label returns the kind tag, prefixed with "exported_" for symbols that
// were declared through an export wrapper or are otherwise public.
func (e SymbolEntry) Label() string {
	if e.Exported {
		return "exported_" + string(e.Kind)
	}
	return string(e.Kind)
}

// ParsedFile is the symbol outline of one source file. A ParsedFile is only
// produced when at least one symbol was extracted.
type ParsedFile struct {
	Path     string
	Language string
	Entries  []SymbolEntry
}

// adapter translates one tree-sitter grammar into SymbolEntry values.
type adapter struct {
	name       string
	extensions []string
	lang       *sitter.Language
	extract    func(root *sitter.Node, source []byte) []SymbolEntry
}

// adapters maps file extensions to language adapters. Populated by init()
// functions in the per-language files.
var adapters = map[string]*adapter{}

func register(a *adapter) {
	for _, ext := range a.extensions {
		adapters[ext] = a
	}
}

func adapterFor(path string) (*adapter, bool) {
	a, ok := adapters[strings.ToLower(filepath.Ext(path))]
	return a, ok
}

// Supports reports whether a file path has an extension with a registered
// language adapter.
func Supports(path string) bool {
	_, ok := adapterFor(path)
	return ok
}

// LanguageFor returns the adapter language name for path, or "" if unsupported.
func LanguageFor(path string) string {
	if a, ok := adapterFor(path); ok {
		return a.name
	}
	return ""
}

// Parser extracts symbol outlines from source files.
type Parser struct {
	concurrency int
}

// NewParser creates a Parser. Batch parsing runs with the given concurrency;
// values below one fall back to a single worker.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{concurrency: concurrency}
}

// Parse extracts the symbol outline of file. It returns nil without error for
// unsupported extensions and for files with no named declarations. Malformed
// source yields an error wrapping ErrParse.
func (p *Parser) Parse(ctx context.Context, file SourceFile) (*ParsedFile, error) {
	a, ok := adapterFor(file.Path)
	if !ok {
		return nil, nil
	}

	// tree-sitter parsers are not safe for concurrent use, so each call owns one.
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(a.lang)

	tree, err := sp.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, file.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: empty syntax tree", ErrParse, file.Path)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s: syntax error near line %d", ErrParse, file.Path, firstErrorLine(root))
	}

	entries := a.extract(root, file.Content)
	if len(entries) == 0 {
		return nil, nil
	}

	return &ParsedFile{
		Path:     file.Path,
		Language: a.name,
		Entries:  entries,
	}, nil
}

// firstErrorLine returns the 1-based line of the first ERROR or missing node.
func firstErrorLine(root *sitter.Node) int {
	line := 1
	found := false
	walk(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			line = int(n.StartPoint().Row) + 1
			found = true
			return false
		}
		return true
	})
	return line
}

// walk performs a pre-order traversal. Returning false from fn skips the
// node's children.
func walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}

// lineRange converts node positions to a 1-based, ordered line range.
func lineRange(n *sitter.Node) (int, int) {
	return clampLines(int(n.StartPoint().Row)+1, int(n.EndPoint().Row)+1)
}

// clampLines forces start to at least 1 and end to at least start. Missing
// position data therefore degrades to line 1.
func clampLines(start, end int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	return start, end
}

// fieldText returns the source text of a named field, or "" if absent.
func fieldText(n *sitter.Node, field string, source []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Content(source))
}

func newEntry(kind Kind, name string, n *sitter.Node, exported bool) SymbolEntry {
	start, end := lineRange(n)
	return SymbolEntry{
		Kind:      kind,
		Name:      name,
		StartLine: start,
		EndLine:   end,
		Exported:  exported,
	}
}
