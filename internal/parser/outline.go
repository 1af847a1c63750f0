package parser

import (
	"fmt"
	"strings"
)

// SymbolNames returns every symbol name in the file, children included, in
// document order.
func SymbolNames(f ParsedFile) []string {
	var names []string
	var collect func(entries []SymbolEntry)
	collect = func(entries []SymbolEntry) {
		for _, e := range entries {
			names = append(names, e.Name)
			collect(e.Children)
		}
	}
	collect(f.Entries)
	return names
}

// CountSymbols returns the number of entries in the file, children included.
func CountSymbols(f ParsedFile) int {
	return len(SymbolNames(f))
}

// Outline renders the file's symbols as an indented markdown list, e.g.
//
//	- exported_function `login` (lines 1-3)
func Outline(f ParsedFile) string {
	var b strings.Builder
	var write func(entries []SymbolEntry, depth int)
	write = func(entries []SymbolEntry, depth int) {
		for _, e := range entries {
			fmt.Fprintf(&b, "%s- %s `%s` (lines %d-%d)\n",
				strings.Repeat("  ", depth), e.Label(), e.Name, e.StartLine, e.EndLine)
			write(e.Children, depth+1)
		}
	}
	write(f.Entries, 0)
	return b.String()
}
