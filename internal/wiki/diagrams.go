package wiki

import (
	"fmt"
	"strings"
)

// maxLabelRunes bounds node labels so wide titles do not distort the chart.
const maxLabelRunes = 40

// featureMapDiagram creates a graph TD from the repository root to each
// feature category and from each category to its pages.
func featureMapDiagram(sections []section) Diagram {
	var b strings.Builder
	b.WriteString("graph TD\n")
	b.WriteString("    root[\"Repository\"]\n")

	for _, s := range sections {
		catID := "cat_" + sanitizeID(s.slug)
		fmt.Fprintf(&b, "    root --> %s[\"%s\\n%d page(s)\"]\n", catID, escapeMermaid(truncateUTF8(s.label, maxLabelRunes)), len(s.pages))
		for _, p := range s.pages {
			docID := "doc_" + sanitizeID(s.slug+"_"+p.id)
			fmt.Fprintf(&b, "    %s --> %s[\"%s\"]\n", catID, docID, escapeMermaid(truncateUTF8(p.title, maxLabelRunes)))
		}
	}

	return Diagram{
		Title:   "Feature Map",
		Type:    "feature-map",
		Content: b.String(),
	}
}

func writeMermaidBlock(b *strings.Builder, d Diagram) {
	b.WriteString("```mermaid\n")
	b.WriteString(d.Content)
	if !strings.HasSuffix(d.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
}

// truncateUTF8 truncates s to at most maxRunes Unicode code points,
// avoiding corruption of multi-byte characters.
func truncateUTF8(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return s
}

// escapeMermaid replaces characters that would break Mermaid label syntax.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// sanitizeID converts a string into a safe Mermaid node identifier.
func sanitizeID(s string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_", " ", "_")
	return r.Replace(s)
}
