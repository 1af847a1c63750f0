package generator

import (
	"fmt"
	"strings"

	"github.com/julianshen/docsynth/internal/parser"
)

// LocalTemplate builds a document from the extracted symbol outline alone.
// It needs no service and never fails.
func LocalTemplate(unit Unit) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", unit.Title)
	b.WriteString("> This page was generated from the source outline because the documentation service was unavailable.\n\n")

	total := 0
	for _, f := range unit.Files {
		total += parser.CountSymbols(f)
	}
	fmt.Fprintf(&b, "## Overview\n\n%d file(s), %d symbol(s).\n\n", len(unit.Files), total)

	b.WriteString("## Files\n\n")
	for _, f := range unit.Files {
		fmt.Fprintf(&b, "### `%s`\n\n", f.Path)
		if f.Language != "" {
			fmt.Fprintf(&b, "Language: %s\n\n", f.Language)
		}
		b.WriteString(parser.Outline(f))
		b.WriteString("\n")
	}

	return Document{
		ID:              unit.DocumentID(),
		Title:           unit.Title,
		Category:        unit.Category,
		SidebarPosition: unit.Position,
		Body:            strings.TrimRight(b.String(), "\n") + "\n",
		SourceFiles:     unit.Paths(),
		Fallback:        true,
	}
}
