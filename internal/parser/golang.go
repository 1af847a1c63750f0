package parser

import (
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

func init() {
	register(&adapter{
		name:       "go",
		extensions: []string{".go"},
		lang:       golang.GetLanguage(),
		extract:    extractGo,
	})
}

func extractGo(root *sitter.Node, source []byte) []SymbolEntry {
	var out []SymbolEntry
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "function_declaration":
			if name := fieldText(n, "name", source); name != "" {
				out = append(out, newEntry(KindFunction, name, n, goExported(name)))
			}
		case "method_declaration":
			method := fieldText(n, "name", source)
			if method == "" {
				continue
			}
			name := method
			if recv := goReceiverType(n, source); recv != "" {
				name = recv + "." + method
			}
			out = append(out, newEntry(KindMethod, name, n, goExported(method)))
		case "type_declaration":
			for j := 0; j < int(n.NamedChildCount()); j++ {
				spec := n.NamedChild(j)
				if spec.Type() != "type_spec" && spec.Type() != "type_alias" {
					continue
				}
				if entry, ok := goTypeEntry(spec, source); ok {
					out = append(out, entry)
				}
			}
		}
	}
	return out
}

func goTypeEntry(spec *sitter.Node, source []byte) (SymbolEntry, bool) {
	name := fieldText(spec, "name", source)
	if name == "" {
		return SymbolEntry{}, false
	}
	kind := KindType
	typeNode := spec.ChildByFieldName("type")
	if typeNode != nil {
		switch typeNode.Type() {
		case "struct_type":
			kind = KindClass
		case "interface_type":
			kind = KindInterface
		}
	}
	entry := newEntry(kind, name, spec, goExported(name))
	if kind == KindInterface {
		for i := 0; i < int(typeNode.NamedChildCount()); i++ {
			m := typeNode.NamedChild(i)
			// method_spec in older grammars, method_elem in newer ones.
			if m.Type() != "method_spec" && m.Type() != "method_elem" {
				continue
			}
			if mname := fieldText(m, "name", source); mname != "" {
				entry.Children = append(entry.Children, newEntry(KindMethod, mname, m, goExported(mname)))
			}
		}
	}
	return entry, true
}

// goReceiverType returns the receiver's type name without pointer or type
// parameters, e.g. "Server" for (s *Server[T]).
func goReceiverType(method *sitter.Node, source []byte) string {
	recv := method.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var name string
	walk(recv, func(n *sitter.Node) bool {
		if name != "" {
			return false
		}
		if n.Type() == "type_identifier" {
			name = n.Content(source)
			return false
		}
		return true
	})
	return name
}

func goExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
