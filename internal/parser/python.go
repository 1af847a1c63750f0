package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	register(&adapter{
		name:       "python",
		extensions: []string{".py"},
		lang:       python.GetLanguage(),
		extract:    extractPython,
	})
}

func extractPython(root *sitter.Node, source []byte) []SymbolEntry {
	var out []SymbolEntry
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if entry, ok := pythonDefinition(root.NamedChild(i), source); ok {
			out = append(out, entry)
		}
	}
	return out
}

// pythonDefinition converts a module-level or class-level statement into an
// entry. Decorated definitions are unwrapped to the decorated node.
func pythonDefinition(n *sitter.Node, source []byte) (SymbolEntry, bool) {
	if n.Type() == "decorated_definition" {
		n = n.ChildByFieldName("definition")
		if n == nil {
			return SymbolEntry{}, false
		}
	}

	name := fieldText(n, "name", source)
	if name == "" {
		return SymbolEntry{}, false
	}

	switch n.Type() {
	case "function_definition":
		return newEntry(KindFunction, name, n, pythonExported(name)), true
	case "class_definition":
		entry := newEntry(KindClass, name, n, pythonExported(name))
		if body := n.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				member, ok := pythonDefinition(body.NamedChild(i), source)
				if !ok || member.Kind != KindFunction {
					continue
				}
				member.Kind = KindMethod
				entry.Children = append(entry.Children, member)
			}
		}
		return entry, true
	}
	return SymbolEntry{}, false
}

func pythonExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}
