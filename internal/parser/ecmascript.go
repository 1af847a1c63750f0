package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	register(&adapter{
		name:       "javascript",
		extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		lang:       javascript.GetLanguage(),
		extract:    extractECMAScript,
	})
	register(&adapter{
		name:       "typescript",
		extensions: []string{".ts", ".mts", ".cts"},
		lang:       typescript.GetLanguage(),
		extract:    extractECMAScript,
	})
	register(&adapter{
		name:       "tsx",
		extensions: []string{".tsx"},
		lang:       tsx.GetLanguage(),
		extract:    extractECMAScript,
	})
}

// functionValueTypes are the node types that make a variable binding count
// as a function declaration. Older grammars call function expressions "function".
var functionValueTypes = map[string]bool{
	"arrow_function":      true,
	"function":            true,
	"function_expression": true,
	"generator_function":  true,
}

// extractECMAScript handles the JavaScript and TypeScript grammars, which
// share node names for every construct the outline cares about.
func extractECMAScript(root *sitter.Node, source []byte) []SymbolEntry {
	var out []SymbolEntry
	for i := 0; i < int(root.NamedChildCount()); i++ {
		visitECMAScript(root.NamedChild(i), source, true, false, &out)
	}
	return out
}

// visitECMAScript appends entries for n and its descendants in document order.
// top marks program-level statements; exported marks an unwrapped export.
func visitECMAScript(n *sitter.Node, source []byte, top, exported bool, out *[]SymbolEntry) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			visitECMAScript(decl, source, top, true, out)
			return
		}
		// export default <expression>: only named function/class expressions count.
		if val := n.ChildByFieldName("value"); val != nil {
			visitECMAScript(val, source, false, true, out)
		}
		return

	case "function_declaration", "generator_function_declaration":
		if name := fieldText(n, "name", source); name != "" {
			*out = append(*out, newEntry(KindFunction, name, n, exported))
		}
		visitECMAScriptChildren(n.ChildByFieldName("body"), source, out)
		return

	case "function", "function_expression", "generator_function":
		// Only reached for default-exported or nested expressions; anonymous ones are skipped.
		if name := fieldText(n, "name", source); name != "" && exported {
			*out = append(*out, newEntry(KindFunction, name, n, exported))
		}
		visitECMAScriptChildren(n.ChildByFieldName("body"), source, out)
		return

	case "class_declaration", "abstract_class_declaration", "class":
		name := fieldText(n, "name", source)
		if name == "" {
			return
		}
		entry := newEntry(KindClass, name, n, exported)
		entry.Children = classMethods(n.ChildByFieldName("body"), source)
		*out = append(*out, entry)
		return

	case "interface_declaration":
		name := fieldText(n, "name", source)
		if name == "" {
			return
		}
		entry := newEntry(KindInterface, name, n, exported)
		entry.Children = interfaceMethods(n.ChildByFieldName("body"), source)
		*out = append(*out, entry)
		return

	case "type_alias_declaration":
		if name := fieldText(n, "name", source); name != "" {
			*out = append(*out, newEntry(KindType, name, n, exported))
		}
		return

	case "enum_declaration":
		if name := fieldText(n, "name", source); name != "" {
			*out = append(*out, newEntry(KindEnum, name, n, exported))
		}
		return

	case "lexical_declaration", "variable_declaration":
		if !top {
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			decl := n.NamedChild(i)
			if decl == nil || decl.Type() != "variable_declarator" {
				continue
			}
			nameNode := decl.ChildByFieldName("name")
			value := decl.ChildByFieldName("value")
			if nameNode == nil || value == nil || nameNode.Type() != "identifier" {
				continue
			}
			if !functionValueTypes[value.Type()] {
				continue
			}
			*out = append(*out, newEntry(KindVariable, nameNode.Content(source), decl, exported))
		}
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		visitECMAScript(n.NamedChild(i), source, false, false, out)
	}
}

func visitECMAScriptChildren(body *sitter.Node, source []byte, out *[]SymbolEntry) {
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		visitECMAScript(body.NamedChild(i), source, false, false, out)
	}
}

// classMethods collects method members of a class body in source order.
func classMethods(body *sitter.Node, source []byte) []SymbolEntry {
	if body == nil {
		return nil
	}
	var methods []SymbolEntry
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition", "abstract_method_signature", "method_signature":
			if name := memberName(member, source); name != "" {
				methods = append(methods, newEntry(KindMethod, name, member, false))
			}
		}
	}
	return methods
}

// interfaceMethods collects method signatures from an interface body. The
// body node is "interface_body" or "object_type" depending on grammar version.
func interfaceMethods(body *sitter.Node, source []byte) []SymbolEntry {
	if body == nil {
		return nil
	}
	var methods []SymbolEntry
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "method_signature" {
			continue
		}
		if name := memberName(member, source); name != "" {
			methods = append(methods, newEntry(KindMethod, name, member, false))
		}
	}
	return methods
}

// memberName returns a member's name unless it is computed at runtime.
func memberName(member *sitter.Node, source []byte) string {
	nameNode := member.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() == "computed_property_name" {
		return ""
	}
	return nameNode.Content(source)
}
